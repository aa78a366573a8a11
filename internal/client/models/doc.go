// Package models defines the wire and domain types shared by the Madrasati
// client: the login payload, the backend envelope and the parent, student,
// circuit and payment records.
package models
