package sqlite

import (
	"fmt"

	"timesheet/internal/store"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// documentColumns is the column list ScanDocument expects, in order.
const documentColumns = "doc_key, version, data, created_at, updated_at"

// ScanDocument scans a single document row.
func ScanDocument(scanner Scanner) (*store.Document, error) {
	var (
		doc       store.Document
		data      []byte
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&doc.Key, &doc.Version, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	payload, err := decodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("decode payload of %s: %w", doc.Key, err)
	}
	doc.Data = payload

	if doc.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", doc.Key, err)
	}
	if doc.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", doc.Key, err)
	}
	return &doc, nil
}

// ScanDocuments scans every remaining row.
func ScanDocuments(rows Rows) ([]*store.Document, error) {
	var docs []*store.Document
	for rows.Next() {
		doc, err := ScanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
