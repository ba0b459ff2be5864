package services

import "dernek/internal/source"

// Screens whose snapshots are cached independently.
const (
	ScreenCalendar = "calendar"
	ScreenLedger   = "ledger"
	ScreenReport   = "report"
	ScreenMap      = "map"
)

// Screens lists every screen.
func Screens() []string {
	return []string{ScreenCalendar, ScreenLedger, ScreenReport, ScreenMap}
}

var screensByCollection = map[string][]string{
	source.CollectionEvents:   {ScreenCalendar},
	source.CollectionProjects: {ScreenCalendar, ScreenReport},
	source.CollectionCases:    {ScreenCalendar, ScreenReport},
	source.CollectionPayments: {ScreenLedger},
	source.CollectionInKind:   {ScreenLedger, ScreenReport},
	source.CollectionPeople:   {ScreenLedger, ScreenReport, ScreenMap},
	source.CollectionProducts: {ScreenLedger, ScreenReport},
	source.CollectionRecords:  {ScreenReport},
	source.CollectionMessages: {ScreenReport},
}

// ScreenForCollection returns the screens whose snapshot includes
// collection. Unknown collections affect every screen.
func ScreenForCollection(collection string) []string {
	if screens, ok := screensByCollection[collection]; ok {
		return append([]string(nil), screens...)
	}
	return Screens()
}
