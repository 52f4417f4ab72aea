package config

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

const (
	triggerTag   = "koanf"
	triggerDelim = "."

	defaultTriggerMaxUsers      = 100
	defaultTriggerMinSampleSize = 20
)

// Trigger configures one batch run. Payloads may only set the fields below;
// anything else is rejected.
type Trigger struct {
	DryRun             bool             `koanf:"dryRun" json:"dryRun"`
	MaxUsers           int              `koanf:"maxUsers" json:"maxUsers" validate:"min=1"`
	UserIDs            []string         `koanf:"userIds" json:"userIds,omitempty" validate:"omitempty,dive,required,excludes=:"`
	Channels           []domain.Channel `koanf:"channels" json:"channels" validate:"min=1,dive,oneof=facebook instagram linkedin twitter"`
	ContentTypes       []string         `koanf:"contentTypes" json:"contentTypes" validate:"min=1,dive,required,excludes=:"`
	ForceRecalculation bool             `koanf:"forceRecalculation" json:"forceRecalculation"`
	MinSampleSize      int              `koanf:"minSampleSize" json:"minSampleSize" validate:"min=1"`
}

var triggerKeys = map[string]struct{}{
	"dryRun":             {},
	"maxUsers":           {},
	"userIds":            {},
	"channels":           {},
	"contentTypes":       {},
	"forceRecalculation": {},
	"minSampleSize":      {},
}

func DefaultTrigger() Trigger {
	return Trigger{
		MaxUsers:      defaultTriggerMaxUsers,
		Channels:      domain.AllChannels(),
		ContentTypes:  []string{"blog_post", "social_media"},
		MinSampleSize: defaultTriggerMinSampleSize,
	}
}

// ParseTrigger decodes a YAML or JSON payload over the defaults. An empty
// payload yields the defaults.
func ParseTrigger(payload []byte) (*Trigger, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return loadTrigger(nil)
	}
	return loadTrigger(payloadProvider(payload))
}

func LoadTriggerFile(path string) (*Trigger, error) {
	return loadTrigger(file.Provider(path))
}

func loadTrigger(provider koanf.Provider) (*Trigger, error) {
	k := koanf.New(triggerDelim)
	if err := k.Load(structs.Provider(DefaultTrigger(), triggerTag), nil); err != nil {
		return nil, fmt.Errorf("load trigger defaults: %w", err)
	}

	if provider != nil {
		payload := koanf.New(triggerDelim)
		if err := payload.Load(provider, yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
		}
		if err := checkTriggerKeys(payload); err != nil {
			return nil, err
		}
		if err := k.Merge(payload); err != nil {
			return nil, fmt.Errorf("merge trigger payload: %w", err)
		}
	}

	var trigger Trigger
	if err := k.UnmarshalWithConf("", &trigger, koanf.UnmarshalConf{Tag: triggerTag}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
	}

	trigger.normalize()
	if err := trigger.Validate(); err != nil {
		return nil, err
	}

	return &trigger, nil
}

func checkTriggerKeys(payload *koanf.Koanf) error {
	var unknown []string
	for key := range payload.Raw() {
		if _, ok := triggerKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownTriggerKey, strings.Join(unknown, ", "))
}

func (t *Trigger) normalize() {
	for i, ch := range t.Channels {
		t.Channels[i] = domain.Channel(strings.ToLower(strings.TrimSpace(ch.String())))
	}
}

func (t *Trigger) Validate() error {
	err := triggerValidator().Struct(t)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidTrigger, err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s failed %q", fe.Namespace(), fieldRule(fe)))
	}
	return fmt.Errorf("%w: %w", ErrInvalidTrigger, errors.Join(errs...))
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func triggerValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get(triggerTag), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// payloadProvider serves an in-memory trigger payload to koanf.
type payloadProvider []byte

func (p payloadProvider) ReadBytes() ([]byte, error) {
	return p, nil
}

func (p payloadProvider) Read() (map[string]any, error) {
	return nil, errors.New("payload provider requires a parser")
}
