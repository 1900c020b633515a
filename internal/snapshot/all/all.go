// Package all registers every snapshot backend. Blank-import it from the
// binary; the config/flags decide which backend is actually used.
package all

import (
	_ "clusterprep/internal/snapshot/postgres"
	_ "clusterprep/internal/snapshot/sqlite"
)
