package config_test

import (
	"github.com/mucharafal/py4j/config"
	"github.com/mucharafal/py4j/logger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	It("validates the default configuration", func() {
		c := config.Default()
		Expect(c.Validate()).To(BeNil())
	})

	It("rejects a missing listen address", func() {
		c := config.Default()
		c.Listen.Address = ""
		Expect(c.Validate()).ToNot(BeNil())
	})

	It("rejects an out-of-range port", func() {
		c := config.Default()
		c.Listen.Port = 70000
		Expect(c.Validate()).ToNot(BeNil())
	})

	It("requires a token when auth is enabled", func() {
		c := config.Default()
		c.Auth.Enabled = true
		Expect(c.Validate()).ToNot(BeNil())

		c.Auth.Token = "secret"
		Expect(c.Validate()).To(BeNil())
	})

	It("rejects an unrecognized log level", func() {
		c := config.Default()
		c.Logging.Level = "verbose"
		Expect(c.Validate()).ToNot(BeNil())
	})

	It("parses the log level into a logger.Level", func() {
		c := config.Default()
		c.Logging.Level = "debug"
		Expect(c.LogLevel()).To(Equal(logger.DebugLevel))
	})
})
