// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Stats counts the commands sent in a session and their durations.
type Stats struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewStats() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devtest_commands_total",
			Help: "Device commands sent, by result.",
		}, []string{"family", "command", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "devtest_command_duration_seconds",
			Help:    "Device command duration as reported by the transport.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"family", "command"}),
	}

	s.registry.MustRegister(s.commands, s.duration)

	return s
}

func outcomeResult(o outcome) string {
	switch {
	case o.err != nil:
		return "error"
	case o.failed:
		return "failed"
	}

	return "ok"
}

// Observe records one command outcome. Commands that could not be sent have no duration.
func (s *Stats) Observe(family, command string, o outcome) {
	if s == nil {
		return
	}

	s.commands.WithLabelValues(family, command, outcomeResult(o)).Inc()

	if o.err == nil {
		s.duration.WithLabelValues(family, command).Observe(o.duration.Seconds())
	}
}

// WriteText writes all metrics in the Prometheus text exposition format.
func (s *Stats) WriteText(w io.Writer) error {
	mfs, err := s.registry.Gather()
	if err != nil {
		return err
	}

	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}

// WriteFile writes the metrics to path, e.g. for the node_exporter textfile collector.
func (s *Stats) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create statistics file")
	}

	if err := s.WriteText(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (s *Session) statsMenu() error {
	const title = "Command statistics:"

	for {
		n, err := s.c.Menu(title, nil, []string{"Print statistics.", "Save statistics to file."}, "main menu")
		if err != nil || n == 0 {
			return err
		}

		switch n {
		case 1:
			if err := s.stats.WriteText(s.c.Writer()); err != nil {
				s.c.Printf("Cannot gather statistics: %v\n", err)
			}
		case 2:
			path, err := s.c.ReadString("File name", "devtest.prom")
			if err != nil {
				return err
			}
			if err := s.stats.WriteFile(path); err != nil {
				s.c.Println(err)
			} else {
				s.c.Printf("Statistics written to %s.\n", path)
			}
		}

		if err := s.c.Pause(); err != nil {
			return err
		}
	}
}
