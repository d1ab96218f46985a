package services

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countMessages(hook *logtest.Hook, msg string) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			n++
		}
	}
	return n
}

func TestFindProfitablePairsRejectionLogLevel(t *testing.T) {
	logger := logrus.StandardLogger()
	prevLevel := logger.GetLevel()
	hook := logtest.NewLocal(logger)
	t.Cleanup(func() {
		logger.SetLevel(prevLevel)
		logger.ReplaceHooks(make(logrus.LevelHooks))
	})

	req := baseRequest()
	req.TMax = 0.01

	logger.SetLevel(logrus.InfoLevel)
	res, err := FindProfitablePairs(context.Background(), req, scenarioCandidates(50, 80), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	require.Equal(t, 1, res.Stats.TimeInfeasible)
	assert.Zero(t, countMessages(hook, "skipping pair"))
	assert.Equal(t, 1, countMessages(hook, "pair matching done"))

	hook.Reset()
	logger.SetLevel(logrus.DebugLevel)
	_, err = FindProfitablePairs(context.Background(), req, scenarioCandidates(50, 80), MatchOptions{Fallback: fallback()})
	require.NoError(t, err)
	assert.Equal(t, 1, countMessages(hook, "skipping pair"))
}
