package kafka

import "errors"

var (
	// ErrNoBrokers is returned for configs without bootstrap servers.
	ErrNoBrokers = errors.New("kafka: no brokers configured")
	// ErrUnsupportedMechanism is returned for SASL mechanisms other than PLAIN
	// and SCRAM.
	ErrUnsupportedMechanism = errors.New("kafka: unsupported SASL mechanism")
	// ErrNoTopic is returned when a record or request names no topic.
	ErrNoTopic = errors.New("kafka: topic is required")
	// ErrUnknownTopic is returned when consuming a topic the cluster does
	// not report.
	ErrUnknownTopic = errors.New("kafka: unknown topic")
)
