package notify

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"houseoflove/pkg/utils"
)

const (
	DefaultEmailJSBaseURL = "https://api.emailjs.com"
	DefaultTwilioBaseURL  = "https://api.twilio.com"
	DefaultTimeout        = 10 * time.Second
)

// Config holds the provider credentials. Every order needs both channels,
// so the whole set is required.
type Config struct {
	EmailJSServiceID  string `validate:"required"`
	EmailJSTemplateID string `validate:"required"`
	EmailJSPublicKey  string `validate:"required"`
	EmailJSPrivateKey string
	TwilioAccountSID  string `validate:"required"`
	TwilioAuthToken   string `validate:"required"`
	TwilioFromNumber  string `validate:"required,e164"`
	OwnerEmail        string `validate:"required,email"`
	OwnerPhone        string `validate:"required,e164"`

	EmailJSBaseURL string        `validate:"omitempty,url"`
	TwilioBaseURL  string        `validate:"omitempty,url"`
	Timeout        time.Duration `validate:"gte=0"`
}

func ConfigFrom(c utils.NotifyConfig) Config {
	return Config{
		EmailJSServiceID:  c.EmailJSServiceID,
		EmailJSTemplateID: c.EmailJSTemplateID,
		EmailJSPublicKey:  c.EmailJSPublicKey,
		EmailJSPrivateKey: c.EmailJSPrivateKey,
		TwilioAccountSID:  c.TwilioAccountSID,
		TwilioAuthToken:   c.TwilioAuthToken,
		TwilioFromNumber:  c.TwilioFromNumber,
		OwnerEmail:        c.OwnerEmail,
		OwnerPhone:        c.OwnerPhone,
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("notify config: %w", err)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.EmailJSBaseURL == "" {
		c.EmailJSBaseURL = DefaultEmailJSBaseURL
	}
	if c.TwilioBaseURL == "" {
		c.TwilioBaseURL = DefaultTwilioBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
