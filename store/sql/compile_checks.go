package sqlstore

import "github.com/goliatone/go-enigma/core"

var (
	_ core.EnigmaAdminStore       = (*EnigmaStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
