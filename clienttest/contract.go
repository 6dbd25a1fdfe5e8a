// Package clienttest provides a contract test suite for hostsession.Client
// implementations.
package clienttest

// AllContracts returns all test cases for the contract test suite.
func AllContracts() []TestCase {
	const initialCapacity = 32

	contracts := make([]TestCase, 0, initialCapacity)

	contracts = append(contracts, executeContracts()...)
	contracts = append(contracts, lifecycleContracts()...)
	contracts = append(contracts, fileContracts()...)
	contracts = append(contracts, errorContracts()...)

	return contracts
}
