// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethersphere/treehash/pkg/logging"
	"github.com/sirupsen/logrus"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(&buf, logrus.InfoLevel)
	logger.Debug("hidden")
	logger.WithField("retries_left", 3).Warning("retrying")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message written at info level: %q", out)
	}
	if !strings.Contains(out, "retries_left=3") {
		t.Errorf("field missing from output: %q", out)
	}
	if got := len(logger.Metrics()); got != 5 {
		t.Errorf("got %d collectors, want 5", got)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := logging.Discard()
	logger.Error("dropped")
	logger.Infof("dropped %d", 1)
}
