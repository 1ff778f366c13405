package env_test

import (
	"context"
	"os"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"

	"github.com/luma/tsquery/internal/env"
)

var _ = Describe("env", func() {
	Describe("LoadConfig()", func() {
		vars := []string{"TSQUERY_ADDR", "TSQUERY_SID", "TSQUERY_KEEPALIVE", "TSQUERY_LOG_LEVEL"}

		AfterEach(func() {
			for _, name := range vars {
				os.Unsetenv(name)
			}
		})

		It("applies defaults", func() {
			conf, err := env.LoadConfig(context.Background())
			Expect(err).To(Succeed())

			Expect(conf.Addr).To(Equal("localhost:10011"))
			Expect(conf.ServerID).To(Equal(uint64(1)))
			Expect(conf.KeepAlive).To(Equal(60 * time.Second))
			Expect(conf.LogLevel).To(Equal("info"))
			Expect(conf.DebugHTTP).To(BeFalse())
		})

		It("reads the environment", func() {
			os.Setenv("TSQUERY_ADDR", "ts.example.com:10011")
			os.Setenv("TSQUERY_SID", "3")
			os.Setenv("TSQUERY_KEEPALIVE", "5m")

			conf, err := env.LoadConfig(context.Background())
			Expect(err).To(Succeed())

			Expect(conf.Addr).To(Equal("ts.example.com:10011"))
			Expect(conf.ServerID).To(Equal(uint64(3)))
			Expect(conf.KeepAlive).To(Equal(5 * time.Minute))
		})
	})

	Describe("MakeLogger()", func() {
		It("uses the given level", func() {
			log, err := env.MakeLogger("warn")
			Expect(err).To(Succeed())

			Expect(log.Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
			Expect(log.Core().Enabled(zapcore.WarnLevel)).To(BeTrue())
		})

		It("rejects unknown levels", func() {
			_, err := env.MakeLogger("loud")
			Expect(err).To(HaveOccurred())
		})
	})
})
