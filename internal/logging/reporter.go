package logging

import (
	"github.com/sirupsen/logrus"
)

// ChainReporter logs fallback-chain activity. Attempts go to debug and
// degradations to warn.
type ChainReporter struct {
	Entry *logrus.Entry
}

// NewChainReporter returns a reporter tagged with fields, e.g. the request ID.
func NewChainReporter(fields logrus.Fields) *ChainReporter {
	return &ChainReporter{Entry: Logger.WithFields(fields)}
}

func (r *ChainReporter) Attempt(chain string, tier int, source string) {
	r.Entry.WithFields(logrus.Fields{
		"chain":  chain,
		"tier":   tier,
		"source": source,
	}).Debug("trying source")
}

func (r *ChainReporter) Warn(msg string) {
	r.Entry.Warn(msg)
}

func (r *ChainReporter) Detail(msg string) {
	r.Entry.Debug(msg)
}
