package domain

import "strings"

// Channel identifies the social network a cohort publishes to.
type Channel string

const (
	ChannelFacebook  Channel = "facebook"
	ChannelInstagram Channel = "instagram"
	ChannelLinkedIn  Channel = "linkedin"
	ChannelTwitter   Channel = "twitter"
)

// AllChannels returns the supported channels in a stable order.
func AllChannels() []Channel {
	return []Channel{ChannelFacebook, ChannelInstagram, ChannelLinkedIn, ChannelTwitter}
}

func (c Channel) String() string {
	return string(c)
}

func (c Channel) IsValid() bool {
	switch c {
	case ChannelFacebook, ChannelInstagram, ChannelLinkedIn, ChannelTwitter:
		return true
	default:
		return false
	}
}

func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrUnknownChannel
	}
	return c, nil
}
