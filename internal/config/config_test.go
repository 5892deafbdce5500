package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arcentrix/concurrentqueue/pkg/blockingqueue"
)

func TestSetDefaults(t *testing.T) {
	var c AppConfig
	c.SetDefaults()
	if c.Queue.Capacity != 1024 {
		t.Fatalf("Queue.Capacity = %d, want 1024", c.Queue.Capacity)
	}
	if c.Queue.Algorithm != "disruptor" {
		t.Fatalf("Queue.Algorithm = %q, want disruptor", c.Queue.Algorithm)
	}
	if c.Log.Output != "stdout" {
		t.Fatalf("Log.Output = %q, want stdout", c.Log.Output)
	}
}

func TestToAlgorithm(t *testing.T) {
	cases := []struct {
		in   string
		want blockingqueue.Algorithm
	}{
		{"disruptor", blockingqueue.AlgorithmDisruptor},
		{"Vyukov", blockingqueue.AlgorithmVyukov},
		{"", blockingqueue.AlgorithmDisruptor},
		{"bogus", blockingqueue.AlgorithmDisruptor},
	}
	for _, tc := range cases {
		got := QueueConfig{Algorithm: tc.in}.ToAlgorithm()
		if got != tc.want {
			t.Fatalf("ToAlgorithm(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLoadConfigFileReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.yaml")
	contents := []byte("queue:\n  capacity: 256\n  algorithm: vyukov\n  useWaitingLocking: true\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	got, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() = %v", err)
	}
	if got.Queue.Capacity != 256 {
		t.Fatalf("Queue.Capacity = %d, want 256", got.Queue.Capacity)
	}
	if got.Queue.ToAlgorithm() != blockingqueue.AlgorithmVyukov {
		t.Fatalf("Queue.ToAlgorithm() = %v, want AlgorithmVyukov", got.Queue.ToAlgorithm())
	}
	if !got.Queue.UseWaitingLocking {
		t.Fatal("Queue.UseWaitingLocking = false, want true")
	}
}
