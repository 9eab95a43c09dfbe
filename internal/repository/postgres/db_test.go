package postgres

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		numbered bool
		query    string
		want     string
	}{
		{
			name:     "sqlite passes through",
			numbered: false,
			query:    "UPDATE users SET plan = ?, updated_at = ? WHERE id = ?",
			want:     "UPDATE users SET plan = ?, updated_at = ? WHERE id = ?",
		},
		{
			name:     "postgres numbers placeholders in order",
			numbered: true,
			query:    "UPDATE users SET plan = ?, updated_at = ? WHERE id = ?",
			want:     "UPDATE users SET plan = $1, updated_at = $2 WHERE id = $3",
		},
		{
			name:     "postgres insert",
			numbered: true,
			query:    "INSERT INTO schema_migrations (version) VALUES (?)",
			want:     "INSERT INTO schema_migrations (version) VALUES ($1)",
		},
		{
			name:     "no placeholders",
			numbered: true,
			query:    "SELECT COUNT(*) FROM users",
			want:     "SELECT COUNT(*) FROM users",
		},
		{
			name:     "double digit placeholders",
			numbered: true,
			query:    "INSERT INTO t VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			want:     "INSERT INTO t VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := numberedPlaceholders
			numberedPlaceholders = tt.numbered
			defer func() { numberedPlaceholders = prev }()

			if got := rebind(tt.query); got != tt.want {
				t.Errorf("rebind(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
