package constants

import "time"

const (
	EquipmentListCachePrefix = "equipment_list" // Full equipment list with derived status (CacheBuilder adds colon)
	OverdueCachePrefix       = "overdue_set"    // Last overdue sweep result, written by the sweep job for diagnostics
	MemberSearchCachePrefix  = "member_search"  // Search results by normalized query
	DutyRosterCacheKey       = "duty_roster"    // Officer roster from desk settings
	RegistryCacheExpiry      = 15 * time.Minute // Registry lists churn with every desk interaction
	RosterCacheExpiry        = 24 * time.Hour
)
