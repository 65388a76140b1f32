package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Tracked item queries.
const (
	queryCreateItem = `
		INSERT INTO tracked_items (
			owner_id, title, keywords, store, image_url, product_url,
			current_price, original_price, lowest_price, target_price,
			state, created_at, updated_at
		) VALUES (
			@owner_id, @title, @keywords, @store, @image_url, @product_url,
			@current_price, @original_price, @lowest_price, @target_price,
			@state, now(), now()
		)
		RETURNING id, version, created_at, updated_at`

	queryGetItem = `
		SELECT id, owner_id, title, keywords, store, image_url, product_url,
			current_price, original_price, lowest_price, target_price,
			state, last_checked_at, version, created_at, updated_at
		FROM tracked_items
		WHERE id = $1`

	queryListItems = `
		SELECT id, owner_id, title, keywords, store, image_url, product_url,
			current_price, original_price, lowest_price, target_price,
			state, last_checked_at, version, created_at, updated_at
		FROM tracked_items
		WHERE owner_id = $1 AND state != 'removed'
		ORDER BY created_at DESC`

	queryListRefreshableItems = `
		SELECT id, owner_id, title, keywords, store, image_url, product_url,
			current_price, original_price, lowest_price, target_price,
			state, last_checked_at, version, created_at, updated_at
		FROM tracked_items
		WHERE state != 'removed'
		ORDER BY last_checked_at ASC NULLS FIRST`

	queryUpdateItem = `
		UPDATE tracked_items SET
			current_price = @current_price,
			lowest_price = @lowest_price,
			target_price = @target_price,
			state = @state,
			last_checked_at = @last_checked_at,
			version = version + 1,
			updated_at = now()
		WHERE id = @id AND version = @version
		RETURNING version, updated_at`

	queryItemExists = `SELECT EXISTS(SELECT 1 FROM tracked_items WHERE id = $1)`
)

// Search history queries.
const (
	queryRecordSearch = `
		INSERT INTO search_history (
			owner_id, query_type, keywords, offer_count, searched_at
		) VALUES (
			@owner_id, @query_type, @keywords, @offer_count, now()
		)
		RETURNING id, searched_at`

	queryListSearchHistory = `
		SELECT id, owner_id, query_type, keywords, offer_count, searched_at
		FROM search_history
		WHERE owner_id = $1
		ORDER BY searched_at DESC
		LIMIT $2`
)
