// Package errors provides structured error handling for the tracker.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Reference-data errors
	CodeItemInvalidType     Code = "ITEM_INVALID_TYPE"
	CodeItemEmptyName       Code = "ITEM_EMPTY_NAME"
	CodeItemNegativeCost    Code = "ITEM_NEGATIVE_COST"
	CodeItemDuplicateID     Code = "ITEM_DUPLICATE_ID"
	CodeUpgradeSelfEdge     Code = "UPGRADE_SELF_EDGE"
	CodeUpgradeUnknownItem  Code = "UPGRADE_UNKNOWN_ITEM"
	CodeUpgradeDuplicate    Code = "UPGRADE_DUPLICATE_EDGE"
	CodeHeroEmptyName       Code = "HERO_EMPTY_NAME"
	CodeAbilityMissingHero  Code = "ABILITY_MISSING_HERO"
	CodeAccountEmptyName    Code = "ACCOUNT_EMPTY_USERNAME"
	CodeCSVInvalidHeader    Code = "CSV_INVALID_HEADER"
	CodeCSVInvalidRow       Code = "CSV_INVALID_ROW"
	CodeCSVInvalidBoolean   Code = "CSV_INVALID_BOOLEAN"

	// Ingestion errors
	CodeIngestFetchFailed   Code = "INGEST_FETCH_FAILED"
	CodeIngestBadPayload    Code = "INGEST_BAD_PAYLOAD"
	CodeIngestNoTargets     Code = "INGEST_NO_TARGETS"
	CodeIconDownloadFailed  Code = "ICON_DOWNLOAD_FAILED"

	// API errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeStorage  Code = "STORAGE"
)

// HTTPStatus maps the code to an HTTP response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument,
		CodeItemInvalidType,
		CodeItemEmptyName,
		CodeItemNegativeCost,
		CodeItemDuplicateID,
		CodeUpgradeSelfEdge,
		CodeUpgradeUnknownItem,
		CodeUpgradeDuplicate,
		CodeHeroEmptyName,
		CodeAbilityMissingHero,
		CodeAccountEmptyName,
		CodeCSVInvalidHeader,
		CodeCSVInvalidRow,
		CodeCSVInvalidBoolean:
		return http.StatusBadRequest
	case CodeIngestFetchFailed, CodeIconDownloadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
