// Package report turns a clustering frame into the tables and files users
// look at: coverage and per-cluster statistics, their describe summary, a
// one-row peek, the per-node membership view, and membership, NDJSON and
// SQLite exports.
package report
