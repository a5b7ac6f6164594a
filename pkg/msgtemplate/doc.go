// Package msgtemplate renders Kafka message payloads from a stored template
// source and the input collected by a form. Engines are looked up by name
// through a Registry.
package msgtemplate
