package anchor

import "github.com/xraph/anchor/id"

// ID is the primary identifier type for all anchor entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
