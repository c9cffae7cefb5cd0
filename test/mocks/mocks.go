// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/card_store.go -destination=card_store_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/catalog_source.go -destination=catalog_source_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/collection_service.go -destination=collection_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/secrets.go -destination=secrets_manager_mock.go -package=mocks
