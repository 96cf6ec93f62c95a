// Package demoapp is a fixture project scanned by the dimod tests.
package demoapp

type Clock struct{}

type Store interface {
	Get(key string) string
}

type MemStore struct{}

func (MemStore) Get(string) string { return "" }

type Feed struct{}

// Contributes is the implicit-inclusion marker for this fixture.
type Contributes struct{}

//dimod:module includes=StorageModule
type CoreModule struct{}

//dimod:provides
func (CoreModule) ProvideClock() Clock { return Clock{} }

//dimod:binds
func (CoreModule) BindStore(s MemStore) Store { return s }

//dimod:contributes
func (CoreModule) contributeSync() {}

// CoreModule_ContributeSync stands in for the generated companion module.
//
//dimod:module
type CoreModule_ContributeSync struct{}

//dimod:provides
func (CoreModule_ContributeSync) ProvideFlag() bool { return true }

//dimod:module
type StorageModule struct{}

//dimod:provides
func (StorageModule) ProvideMemStore() MemStore { return MemStore{} }

//dimod:producer
type FeedModule struct {
	CoreModule
}

//dimod:produces
func (FeedModule) ProduceFeed() Feed { return Feed{} }

//dimod:subcomponent FeedView
func (FeedModule) DeclareFeedView() {}
