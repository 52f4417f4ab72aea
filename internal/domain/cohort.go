package domain

import "strings"

// CohortKey is the (user, channel, content type) triple one calculation covers.
type CohortKey struct {
	UserID      string  `json:"user_id"`
	Channel     Channel `json:"channel"`
	ContentType string  `json:"content_type"`
}

func NewCohortKey(userID string, channel Channel, contentType string) CohortKey {
	return CohortKey{
		UserID:      userID,
		Channel:     channel,
		ContentType: contentType,
	}
}

func (k CohortKey) String() string {
	return strings.Join([]string{k.UserID, k.Channel.String(), k.ContentType}, CohortKeySeparator)
}

// CohortKeySeparator joins the parts of a rendered key. Parts may not contain it.
const CohortKeySeparator = ":"

func (k CohortKey) Validate() error {
	if k.UserID == "" || k.ContentType == "" {
		return ErrInvalidCohortKey
	}
	if strings.Contains(k.UserID, CohortKeySeparator) || strings.Contains(k.ContentType, CohortKeySeparator) {
		return ErrInvalidCohortKey
	}
	if !k.Channel.IsValid() {
		return ErrUnknownChannel
	}
	return nil
}
