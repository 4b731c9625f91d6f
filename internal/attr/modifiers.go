package attr

import (
	"time"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// CategoryMarker adds a category to the decorated node
type CategoryMarker struct {
	name string
}

// Category tags a fixture or test with a category
func Category(name string) CategoryMarker {
	return CategoryMarker{name: name}
}

func (m CategoryMarker) Kind() metadata.Kind { return KindCategory }

// ApplyToTest adds the category property
func (m CategoryMarker) ApplyToTest(n domain.Node) {
	n.Properties().Add(domain.PropertyCategory, m.name)
}

// DescriptionMarker sets the description of the decorated node
type DescriptionMarker struct {
	text string
}

// Description describes a fixture or test
func Description(text string) DescriptionMarker {
	return DescriptionMarker{text: text}
}

func (m DescriptionMarker) Kind() metadata.Kind { return KindDescription }

// ApplyToTest sets the description property
func (m DescriptionMarker) ApplyToTest(n domain.Node) {
	n.Properties().Set(domain.PropertyDescription, m.text)
}

// IgnoreMarker excludes the decorated node from execution
type IgnoreMarker struct {
	reason string
}

// Ignore skips a fixture or test with a reason
func Ignore(reason string) IgnoreMarker {
	return IgnoreMarker{reason: reason}
}

func (m IgnoreMarker) Kind() metadata.Kind { return KindIgnore }

// ApplyToTest marks the node ignored
func (m IgnoreMarker) ApplyToTest(n domain.Node) {
	n.Ignore(m.reason)
}

// TimeoutMarker bounds the run time of every test below the decorated node
type TimeoutMarker struct {
	d time.Duration
}

// Timeout limits how long a test may run
func Timeout(d time.Duration) TimeoutMarker {
	return TimeoutMarker{d: d}
}

func (m TimeoutMarker) Kind() metadata.Kind { return KindTimeout }

// ApplyToTest sets the timeout property
func (m TimeoutMarker) ApplyToTest(n domain.Node) {
	n.Properties().Set(domain.PropertyTimeout, m.d.String())
}
