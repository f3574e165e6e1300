// Package postgres backs the session store with a relational table.
// Rows carry an absolute expiry timestamp; Read filters expired rows
// and GC deletes them, so the table stays bounded even without a
// scheduler.
package postgres
