package gateway

import (
	"errors"

	"github.com/arloliu/go-xspress/logger"
)

// DefaultSystemName is the detector system name used by the gateway commands.
const DefaultSystemName = "xsp1"

// ClientOption represents a functional option for configuring a Client.
type ClientOption interface {
	apply(*Client) error
}

type clientOptFunc func(*Client) error

func (f clientOptFunc) apply(c *Client) error { return f(c) }

// WithSystemName sets the detector system name.
//
// The default value is DefaultSystemName.
func WithSystemName(name string) ClientOption {
	return clientOptFunc(func(c *Client) error {
		if name == "" {
			return errors.New("system name is empty")
		}
		c.system = name

		return nil
	})
}

// WithClientLogger sets the logger of the client.
//
// The default is the package default logger.
func WithClientLogger(l logger.Logger) ClientOption {
	return clientOptFunc(func(c *Client) error {
		if l != nil {
			c.logger = l
		}

		return nil
	})
}
