package execution

import "gunit/internal/domain"

// Scheduler distributes tests across workers
type Scheduler interface {
	Schedule(tests []*domain.TestCase, workerCount int) [][]*domain.TestCase
}

// RoundRobinScheduler distributes tests evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes tests evenly across workers using round-robin
func (s *RoundRobinScheduler) Schedule(tests []*domain.TestCase, workerCount int) [][]*domain.TestCase {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]*domain.TestCase, workerCount)
	for i := range distribution {
		distribution[i] = make([]*domain.TestCase, 0)
	}

	for i, test := range tests {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], test)
	}

	return distribution
}

// FixtureScheduler keeps the tests of one fixture on the same worker and
// spreads fixtures round-robin
type FixtureScheduler struct{}

// NewFixtureScheduler creates a new FixtureScheduler
func NewFixtureScheduler() *FixtureScheduler {
	return &FixtureScheduler{}
}

// Schedule groups tests by fixture in first-seen order
func (s *FixtureScheduler) Schedule(tests []*domain.TestCase, workerCount int) [][]*domain.TestCase {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]*domain.TestCase, workerCount)
	for i := range distribution {
		distribution[i] = make([]*domain.TestCase, 0)
	}

	assigned := make(map[*domain.Suite]int)
	next := 0
	for _, test := range tests {
		fixture := domain.FixtureOf(test)
		workerIndex, ok := assigned[fixture]
		if !ok {
			workerIndex = next % workerCount
			assigned[fixture] = workerIndex
			next++
		}
		distribution[workerIndex] = append(distribution[workerIndex], test)
	}

	return distribution
}
