package migrate

import (
	"context"

	"rental-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, uuid-ossp
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы и UNIQUE
	CreateFKsViaSQL        bool // FK через SQL (поверх GORM-constraint)
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateRentalDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных проката")

	// Расширения
	if opt.CreateExtensions {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			log.Error("Не удалось включить расширение uuid-ossp", zap.Error(err))
			return err
		}
	}

	// Таблицы
	log.Info("Создание таблиц каталога, заказов и блокировок склада")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.BundleItem{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.StockBlock{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}

	// Триггер updated_at
	if opt.CreateUpdatedAtTrigger {
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated
BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_customers_updated ON customers;
CREATE TRIGGER trg_customers_updated
BEFORE UPDATE ON customers
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггеры updated_at", zap.Error(err))
			return err
		}
	}

	// CHECK-constraint
	if opt.CreateChecks {
		// Статусы заказов (храним TEXT)
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('PENDING','CONFIRMED','COMPLETED','CANCELLED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов", zap.Error(err))
			return err
		}

		// Склад неотрицательный
		if err := db.Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_total_stock_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_total_stock_non_negative
  CHECK (total_stock >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для products.total_stock", zap.Error(err))
			return err
		}

		// Количество > 0
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);

ALTER TABLE bundle_items
  DROP CONSTRAINT IF EXISTS chk_bundle_items_quantity_gt_zero;
ALTER TABLE bundle_items
  ADD CONSTRAINT chk_bundle_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для количеств", zap.Error(err))
			return err
		}

		// Цены неотрицательные
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_prices_non_negative;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_prices_non_negative
  CHECK (unit_price_cents >= 0 AND line_total_cents >= 0);

ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_total_non_negative;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_total_non_negative
  CHECK (total_cents >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для цен", zap.Error(err))
			return err
		}

		// Полуинтервалы дат: конец строго позже начала
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_dates_ordered;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_dates_ordered
  CHECK (rental_end > rental_start);

ALTER TABLE stock_blocks
  DROP CONSTRAINT IF EXISTS chk_stock_blocks_dates_ordered;
ALTER TABLE stock_blocks
  ADD CONSTRAINT chk_stock_blocks_dates_ordered
  CHECK (end_date > start_date);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для интервалов дат", zap.Error(err))
			return err
		}
	}

	// Индексы
	if opt.CreateIndexes {
		// Основной индекс проверки пересечений: продукт + даты
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_stock_blocks_product_dates
ON stock_blocks (product_id, start_date, end_date);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_stock_blocks_product_dates", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_stock_blocks_order
ON stock_blocks (order_id);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_stock_blocks_order", zap.Error(err))
			return err
		}

		// Для выборок заказов по статусу и дате
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (status, created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_orders_status_created", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_bundle_items_bundle_product
ON bundle_items (bundle_id, product_id);
`).Error; err != nil {
			log.Error("Не удалось создать уникальный индекс ux_bundle_items_bundle_product", zap.Error(err))
			return err
		}
	}

	// Внешние ключи
	if opt.CreateFKsViaSQL {
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK order_items.order_id -> orders.id", zap.Error(err))
			return err
		}

		// Блокировка склада не переживает свой заказ
		if err := db.Exec(`
ALTER TABLE stock_blocks
  DROP CONSTRAINT IF EXISTS fk_stock_blocks_order,
  ADD CONSTRAINT fk_stock_blocks_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK stock_blocks.order_id -> orders.id", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE stock_blocks
  DROP CONSTRAINT IF EXISTS fk_stock_blocks_product,
  ADD CONSTRAINT fk_stock_blocks_product
    FOREIGN KEY (product_id) REFERENCES products(id);
`).Error; err != nil {
			log.Error("Не удалось создать FK stock_blocks.product_id -> products.id", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE bundle_items
  DROP CONSTRAINT IF EXISTS fk_bundle_items_bundle,
  ADD CONSTRAINT fk_bundle_items_bundle
    FOREIGN KEY (bundle_id) REFERENCES products(id) ON DELETE CASCADE;
ALTER TABLE bundle_items
  DROP CONSTRAINT IF EXISTS fk_bundle_items_product,
  ADD CONSTRAINT fk_bundle_items_product
    FOREIGN KEY (product_id) REFERENCES products(id);
`).Error; err != nil {
			log.Error("Не удалось создать FK для bundle_items", zap.Error(err))
			return err
		}
	}

	log.Info("Миграция базы данных проката успешно завершена")
	return nil
}
