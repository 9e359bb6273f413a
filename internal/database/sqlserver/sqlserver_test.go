package sqlserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/GoogleCloudPlatform/db-workload-matcher/internal/database"
)

func TestSQLServerQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Simple name", input: "orders", expected: "[orders]"},
		{name: "Closing bracket escaped", input: "weird]name", expected: "[weird]]name]"},
		{name: "Space in name", input: "order details", expected: "[order details]"},
	}

	handler := sqlServerHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.QuoteIdentifier(tt.input); got != tt.expected {
				t.Errorf("QuoteIdentifier(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSQLServerListTables(t *testing.T) {
	tests := []struct {
		name           string
		expectedTables []string
		expectedError  string
		mockSetup      func(sqlmock.Sqlmock)
	}{
		{
			name:           "Returns base tables",
			expectedTables: []string{"nation", "region"},
			mockSetup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"TABLE_NAME"}).
					AddRow("nation").
					AddRow("region")
				mock.ExpectQuery(`SELECT TABLE_NAME FROM INFORMATION_SCHEMA\.TABLES`).WillReturnRows(rows)
			},
		},
		{
			name:          "Query error",
			expectedError: "error querying tables",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT TABLE_NAME FROM INFORMATION_SCHEMA\.TABLES`).
					WillReturnError(errors.New("login failed"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("Failed to create mock database: %v", err)
			}
			defer mockDB.Close()

			tt.mockSetup(mock)

			db := &database.DB{Pool: mockDB}
			tables, err := sqlServerHandler{}.ListTables(context.Background(), db)

			if tt.expectedError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectedError) {
					t.Fatalf("Expected error containing %q, got: %v", tt.expectedError, err)
				}
			} else {
				if err != nil {
					t.Fatalf("Expected no error, but got: %v", err)
				}
				if len(tables) != len(tt.expectedTables) {
					t.Fatalf("Expected %d tables, got %d: %v", len(tt.expectedTables), len(tables), tables)
				}
				for i, want := range tt.expectedTables {
					if tables[i] != want {
						t.Errorf("tables[%d] = %q, want %q", i, tables[i], want)
					}
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unfulfilled mock expectations: %v", err)
			}
		})
	}
}
