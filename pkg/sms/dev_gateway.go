package sms

import (
	"github.com/sirupsen/logrus"
)

// DevGateway logs messages instead of sending them. Used in development so
// gate codes show up in the server log.
type DevGateway struct {
	logger *logrus.Logger
}

// NewDevGateway creates a new development gateway
func NewDevGateway(logger *logrus.Logger) *DevGateway {
	return &DevGateway{logger: logger}
}

// Send logs the message that would have been sent
func (g *DevGateway) Send(phone, message string) error {
	g.logger.WithFields(logrus.Fields{
		"phone":   phone,
		"message": message,
	}).Info("SMS (dev mode, not sent)")
	return nil
}
