package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/sitecheck/config"
)

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		os.Unsetenv("CACHE_BACKEND")
		os.Unsetenv("PROBE_TIMEOUT")
	})

	Describe("Load", func() {
		Context("with a valid config file", func() {
			BeforeEach(func() {
				configContent := `
server:
  address: ":9090"
  environment: "prod"

probe:
  timeout: "5s"
  max_redirects: 3
  user_agent: "probe-test/2.0"

cache:
  backend: "redis"
  ttl: "30s"
  redis_url: "redis://cache.internal:6379/1"
  write_timeout: "1s"
  breaker:
    failure_threshold: 2
    reset_timeout: "10s"

logging:
  level: "debug"
`
				err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644)
				Expect(err).NotTo(HaveOccurred())
			})

			It("loads every section", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":9090"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvProd))
				Expect(cfg.Probe.MaxRedirects).To(Equal(3))
				Expect(cfg.Probe.UserAgent).To(Equal("probe-test/2.0"))
				Expect(cfg.Cache.Backend).To(Equal(config.CacheBackendRedis))
				Expect(cfg.Cache.RedisURL).To(Equal("redis://cache.internal:6379/1"))
				Expect(cfg.Cache.Breaker.FailureThreshold).To(Equal(2))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
			})

			It("parses durations", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ProbeTimeout()).To(Equal(5 * time.Second))
				Expect(cfg.CacheTTL()).To(Equal(30 * time.Second))
				Expect(cfg.CacheWriteTimeout()).To(Equal(time.Second))
				Expect(cfg.BreakerResetTimeout()).To(Equal(10 * time.Second))
			})

			It("keeps defaults for omitted keys", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Cache.KeyPrefix).To(Equal("sitecheck:result:"))
				Expect(cfg.Metrics.BufferSize).To(Equal(1000))
				Expect(cfg.Metrics.MaxHosts).To(Equal(1000))
			})
		})

		Context("without a config file", func() {
			It("uses defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":8080"))
				Expect(cfg.ProbeTimeout()).To(Equal(10 * time.Second))
				Expect(cfg.Probe.MaxRedirects).To(Equal(10))
				Expect(cfg.Cache.Backend).To(Equal(config.CacheBackendMemory))
				Expect(cfg.CacheTTL()).To(Equal(60 * time.Second))
			})

			It("lets environment variables override defaults", func() {
				os.Setenv("CACHE_BACKEND", "redis")
				os.Setenv("PROBE_TIMEOUT", "3s")

				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Cache.Backend).To(Equal(config.CacheBackendRedis))
				Expect(cfg.ProbeTimeout()).To(Equal(3 * time.Second))
			})
		})

		Context("with an invalid config file", func() {
			It("rejects an unknown cache backend", func() {
				content := "cache:\n  backend: \"memcached\"\n"
				Expect(os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(content), 0644)).To(Succeed())

				cfg, err := config.Load()
				Expect(err).To(HaveOccurred())
				Expect(cfg).To(BeNil())
			})

			It("rejects a malformed probe timeout", func() {
				content := "probe:\n  timeout: \"soon\"\n"
				Expect(os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(content), 0644)).To(Succeed())

				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				Server:  config.ServerConfig{Address: ":8080", Environment: config.EnvDev},
				Probe:   config.ProbeConfig{Timeout: "10s", MaxRedirects: 10, UserAgent: "sitecheck/1.0"},
				Cache: config.CacheConfig{
					Backend:      config.CacheBackendMemory,
					TTL:          "60s",
					WriteTimeout: "2s",
					Breaker:      config.BreakerConfig{FailureThreshold: 5, ResetTimeout: "30s"},
				},
				Metrics: config.MetricsConfig{BufferSize: 10, MaxHosts: 100},
				Logging: config.LoggingConfig{Level: config.LogLevelInfo},
			}
		})

		It("accepts a complete configuration", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("accepts a zero redirect budget", func() {
			cfg.Probe.MaxRedirects = 0
			Expect(cfg.Validate()).To(Succeed())
		})

		It("requires a redis url for the redis backend", func() {
			cfg.Cache.Backend = config.CacheBackendRedis
			cfg.Cache.RedisURL = ""
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a negative ttl", func() {
			cfg.Cache.TTL = "-5s"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects an address without a port", func() {
			cfg.Server.Address = "localhost"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a zero host limit", func() {
			cfg.Metrics.MaxHosts = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects an unknown log level", func() {
			cfg.Logging.Level = "verbose"
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})
