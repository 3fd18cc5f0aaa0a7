package api

// RecentTable is an entry of the recently opened tables list.
type RecentTable struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// RecentTables is the cached blob, most recent first.
type RecentTables struct {
	Tables []*RecentTable `json:"tables"`
}
