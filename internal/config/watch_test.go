package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestWatchReloads(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "heft.yaml")
	g.Expect(Save(path, DefaultConfig())).To(Succeed())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c *Config) { got <- c })
	}()
	// Let the watcher register before writing.
	time.Sleep(100 * time.Millisecond)

	g.Expect(os.WriteFile(path, []byte("experiment: basic\nduration: 12\n"), 0644)).To(Succeed())

	var cfg *Config
	g.Eventually(got, 3*time.Second).Should(Receive(&cfg))
	g.Expect(cfg.Experiment).To(Equal("basic"))
	g.Expect(cfg.Duration).To(Equal(12.0))

	cancel()
	g.Eventually(done, time.Second).Should(Receive(BeNil()))
}

func TestWatchSkipsInvalid(t *testing.T) {
	g := NewWithT(t)
	path := filepath.Join(t.TempDir(), "heft.yaml")
	g.Expect(Save(path, DefaultConfig())).To(Succeed())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	go func() { _ = Watch(ctx, path, nil, func(c *Config) { got <- c }) }()
	time.Sleep(100 * time.Millisecond)

	g.Expect(os.WriteFile(path, []byte("dt: -1\n"), 0644)).To(Succeed())
	g.Consistently(got, 600*time.Millisecond).ShouldNot(Receive())
}
