package fundsxml

// AssetIndex resolves asset UniqueIDs in constant time.
type AssetIndex struct {
	byID       map[string]*Asset
	duplicates []*Asset // later records sharing an already indexed UniqueID
}

// NewAssetIndex indexes assets by UniqueID. The first record of a UniqueID
// wins; assets without UniqueID are not indexed.
func NewAssetIndex(assets []*Asset) *AssetIndex {
	idx := &AssetIndex{byID: make(map[string]*Asset, len(assets))}
	for _, a := range assets {
		id, ok := a.UniqueID.Get()
		if !ok || id == "" {
			continue
		}
		if _, exists := idx.byID[id]; exists {
			idx.duplicates = append(idx.duplicates, a)
			continue
		}
		idx.byID[id] = a
	}
	return idx
}

// Lookup returns the asset with the given UniqueID.
func (x *AssetIndex) Lookup(id string) (*Asset, bool) {
	a, ok := x.byID[id]
	return a, ok
}

// Len returns the number of distinct UniqueIDs.
func (x *AssetIndex) Len() int { return len(x.byID) }

// Duplicates returns the assets whose UniqueID was already taken, in document order.
func (x *AssetIndex) Duplicates() []*Asset { return x.duplicates }

// Orphans returns the positions whose UniqueID matches no asset, in document order.
// A position without UniqueID is an orphan too.
func (x *AssetIndex) Orphans(positions []*Position) []*Position {
	var orphans []*Position
	for _, p := range positions {
		id, _ := p.UniqueID.Get()
		if _, ok := x.byID[id]; !ok {
			orphans = append(orphans, p)
		}
	}
	return orphans
}

// Unused returns the indexed assets that no position references, in document order.
func (x *AssetIndex) Unused(assets []*Asset, positions []*Position) []*Asset {
	used := make(map[string]bool, len(positions))
	for _, p := range positions {
		if id, ok := p.UniqueID.Get(); ok {
			used[id] = true
		}
	}
	var unused []*Asset
	for _, a := range assets {
		id, ok := a.UniqueID.Get()
		if !ok || id == "" {
			continue
		}
		if x.byID[id] != a {
			continue // duplicate record, reported elsewhere
		}
		if !used[id] {
			unused = append(unused, a)
		}
	}
	return unused
}
