package constants

// Queries are written with `?` placeholders and rebound per driver via sqlx.Rebind.
const (
	// ShiftRosterByStatus feeds the reporting view: one row per
	// (shift, approved volunteer), or one row with a NULL volunteer.
	ShiftRosterByStatus = `
	SELECT s.id, s.title, s.date, s.start_time, s.end_time, s.spots, s.capacity,
	       s.location, s.status, s.created_by, vc.username AS volunteer
	FROM shifts s
	LEFT JOIN volunteer_commitments vc
	       ON vc.shift_id = s.id AND vc.status = 'approved'
	WHERE (? = '' OR s.status = ?)
	ORDER BY s.date, s.start_time, s.id, vc.username
	`
)
