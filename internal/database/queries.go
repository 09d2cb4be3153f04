package database

// User queries
const (
	InsertUserSQL = `
		INSERT INTO users (email, password, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	GetUserByEmailSQL = `
		SELECT id, email, password, role, verified, created_at, updated_at
		FROM users WHERE email = $1`

	GetUserByIDSQL = `
		SELECT id, email, password, role, verified, created_at, updated_at
		FROM users WHERE id = $1`

	UpdateUserSQL = `
		UPDATE users SET email = $1, password = $2, verified = $3, updated_at = NOW()
		WHERE id = $4`

	MarkUserVerifiedSQL = `
		UPDATE users SET verified = TRUE, updated_at = NOW()
		WHERE id = $1`
)

// Verification queries. One pending code per user; reissuing replaces it.
const (
	UpsertVerificationSQL = `
		INSERT INTO verifications (user_id, code)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET code = EXCLUDED.code, created_at = NOW()`

	GetVerificationUserSQL = `
		SELECT user_id FROM verifications WHERE code = $1`

	DeleteVerificationSQL = `
		DELETE FROM verifications WHERE user_id = $1`
)

// Category queries
const (
	// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
	GetOrCreateCategorySQL = `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = categories.name
		RETURNING id, name, slug, cover_image`

	GetCategoryBySlugSQL = `
		SELECT id, name, slug, cover_image
		FROM categories WHERE slug = $1`

	ListCategoriesSQL = `
		SELECT c.id, c.name, c.slug, c.cover_image, COUNT(r.id)
		FROM categories c
		LEFT JOIN restaurants r ON r.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC`

	CountRestaurantsByCategorySQL = `
		SELECT COUNT(*) FROM restaurants WHERE category_id = $1`

	ListRestaurantsByCategorySQL = `
		SELECT id, name, address, cover_image, owner_id, category_id, is_promoted, promoted_until, created_at, updated_at
		FROM restaurants WHERE category_id = $1
		ORDER BY is_promoted DESC, id ASC
		LIMIT $2 OFFSET $3`
)

// Restaurant queries
const (
	InsertRestaurantSQL = `
		INSERT INTO restaurants (name, address, cover_image, owner_id, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	GetRestaurantByIDSQL = `
		SELECT id, name, address, cover_image, owner_id, category_id, is_promoted, promoted_until, created_at, updated_at
		FROM restaurants WHERE id = $1`

	UpdateRestaurantSQL = `
		UPDATE restaurants SET name = $1, address = $2, cover_image = $3, category_id = $4, updated_at = NOW()
		WHERE id = $5`

	DeleteRestaurantSQL = `
		DELETE FROM restaurants WHERE id = $1`

	CountRestaurantsSQL = `
		SELECT COUNT(*) FROM restaurants`

	ListRestaurantsSQL = `
		SELECT id, name, address, cover_image, owner_id, category_id, is_promoted, promoted_until, created_at, updated_at
		FROM restaurants
		ORDER BY is_promoted DESC, id ASC
		LIMIT $1 OFFSET $2`

	ListRestaurantsByOwnerSQL = `
		SELECT id, name, address, cover_image, owner_id, category_id, is_promoted, promoted_until, created_at, updated_at
		FROM restaurants WHERE owner_id = $1
		ORDER BY id ASC`

	SearchRestaurantsSQL = `
		SELECT id, name, address, cover_image, owner_id, category_id, is_promoted, promoted_until, created_at, updated_at
		FROM restaurants WHERE name ILIKE '%' || $1 || '%'
		ORDER BY is_promoted DESC, id ASC
		LIMIT $2 OFFSET $3`

	CountSearchRestaurantsSQL = `
		SELECT COUNT(*) FROM restaurants WHERE name ILIKE '%' || $1 || '%'`

	PromoteRestaurantSQL = `
		UPDATE restaurants SET is_promoted = TRUE, promoted_until = $1, updated_at = NOW()
		WHERE id = $2`

	ExpirePromotionsSQL = `
		UPDATE restaurants SET is_promoted = FALSE, promoted_until = NULL, updated_at = NOW()
		WHERE is_promoted = TRUE AND promoted_until < NOW()`
)

// Dish queries
const (
	InsertDishSQL = `
		INSERT INTO dishes (restaurant_id, name, price, photo, description, options)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	GetDishByIDSQL = `
		SELECT id, restaurant_id, name, price, photo, description, options, created_at, updated_at
		FROM dishes WHERE id = $1`

	ListDishesByRestaurantSQL = `
		SELECT id, restaurant_id, name, price, photo, description, options, created_at, updated_at
		FROM dishes WHERE restaurant_id = $1
		ORDER BY id ASC`

	UpdateDishSQL = `
		UPDATE dishes SET name = $1, price = $2, photo = $3, description = $4, options = $5, updated_at = NOW()
		WHERE id = $6`

	DeleteDishSQL = `
		DELETE FROM dishes WHERE id = $1`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (customer_id, restaurant_id, total, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, dish_id, dish_name, price, options)
		VALUES ($1, $2, $3, $4, $5)`

	GetOrderByIDSQL = `
		SELECT o.id, o.customer_id, o.driver_id, o.restaurant_id, r.owner_id, o.total, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.id = $1`

	GetOrderItemsSQL = `
		SELECT id, order_id, dish_id, dish_name, price, options
		FROM order_items WHERE order_id = $1
		ORDER BY id ASC`

	ListOrdersByCustomerSQL = `
		SELECT o.id, o.customer_id, o.driver_id, o.restaurant_id, r.owner_id, o.total, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.customer_id = $1 AND ($2::TEXT IS NULL OR o.status = $2)
		ORDER BY o.id DESC`

	ListOrdersByDriverSQL = `
		SELECT o.id, o.customer_id, o.driver_id, o.restaurant_id, r.owner_id, o.total, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.driver_id = $1 AND ($2::TEXT IS NULL OR o.status = $2)
		ORDER BY o.id DESC`

	ListOrdersByOwnerSQL = `
		SELECT o.id, o.customer_id, o.driver_id, o.restaurant_id, r.owner_id, o.total, o.status, o.created_at, o.updated_at
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE r.owner_id = $1 AND ($2::TEXT IS NULL OR o.status = $2)
		ORDER BY o.id DESC`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2`

	// The driver claim must be atomic: the IS NULL guard is what turns two
	// racing claims into exactly one winner.
	AssignOrderDriverSQL = `
		UPDATE orders SET driver_id = $1, updated_at = NOW()
		WHERE id = $2 AND driver_id IS NULL`
)

// Payment queries
const (
	InsertPaymentSQL = `
		INSERT INTO payments (transaction_id, user_id, restaurant_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	ListPaymentsByUserSQL = `
		SELECT id, transaction_id, user_id, restaurant_id, created_at
		FROM payments WHERE user_id = $1
		ORDER BY id DESC`
)
