// Package dbtest opens isolated in-memory SQLite databases carrying the
// application schema for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  clerk_user_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  first_name TEXT,
  last_name TEXT,
  plan_type TEXT NOT NULL DEFAULT 'free',
  credits INTEGER NOT NULL DEFAULT 0,
  monthly_releases_limit INTEGER NOT NULL DEFAULT 0,
  total_releases INTEGER NOT NULL DEFAULT 0,
  total_distributions INTEGER NOT NULL DEFAULT 0,
  last_login DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE branding_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  logo_url TEXT,
  primary_color TEXT,
  secondary_color TEXT,
  accent_color TEXT,
  company_name TEXT,
  company_description TEXT,
  company_tagline TEXT,
  address TEXT,
  contact_person TEXT,
  contact_email TEXT,
  contact_phone TEXT,
  website TEXT,
  linkedin_url TEXT,
  twitter_url TEXT,
  facebook_url TEXT,
  instagram_url TEXT,
  youtube_url TEXT,
  telegram_url TEXT,
  email_signature TEXT,
  default_closing TEXT,
  template_style TEXT,
  show_logo_in_header INTEGER NOT NULL DEFAULT 1,
  show_social_links INTEGER NOT NULL DEFAULT 1,
  footer_text TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at DATETIME
)`,
	`CREATE TABLE media_outlets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  media_type TEXT NOT NULL,
  description TEXT,
  website TEXT,
  email TEXT,
  telegram TEXT,
  phone TEXT,
  whatsapp TEXT,
  audience_size INTEGER NOT NULL DEFAULT 0,
  monthly_reach INTEGER NOT NULL DEFAULT 0,
  base_price TEXT NOT NULL DEFAULT '0',
  priority_multiplier TEXT NOT NULL DEFAULT '1',
  is_premium INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  rating TEXT NOT NULL DEFAULT '0',
  added_by_user_id TEXT,
  added_by_name TEXT,
  added_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE media_categories (
  media_outlet_id TEXT NOT NULL REFERENCES media_outlets(id) ON DELETE CASCADE,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  PRIMARY KEY (media_outlet_id, category_id)
)`,
	`CREATE TABLE distributions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  press_release_title TEXT NOT NULL,
  press_release_content TEXT NOT NULL,
  press_release_data TEXT NOT NULL DEFAULT '{}',
  company_name TEXT,
  contact_email TEXT,
  contact_phone TEXT,
  scheduled_at DATETIME,
  sent_at DATETIME,
  status TEXT NOT NULL DEFAULT 'pending',
  total_media_count INTEGER NOT NULL DEFAULT 0,
  sent_count INTEGER NOT NULL DEFAULT 0,
  failed_count INTEGER NOT NULL DEFAULT 0,
  total_price TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE distribution_media (
  distribution_id TEXT NOT NULL REFERENCES distributions(id) ON DELETE CASCADE,
  media_outlet_id TEXT NOT NULL REFERENCES media_outlets(id),
  PRIMARY KEY (distribution_id, media_outlet_id)
)`,
	`CREATE TABLE distribution_files (
  id TEXT PRIMARY KEY,
  distribution_id TEXT NOT NULL REFERENCES distributions(id) ON DELETE CASCADE,
  file_name TEXT NOT NULL,
  file_path TEXT NOT NULL,
  file_size INTEGER NOT NULL,
  mime_type TEXT NOT NULL,
  uploaded_at DATETIME
)`,
	`CREATE TABLE delivery_logs (
  id TEXT PRIMARY KEY,
  distribution_id TEXT NOT NULL REFERENCES distributions(id) ON DELETE CASCADE,
  media_outlet_id TEXT NOT NULL REFERENCES media_outlets(id),
  contact_type TEXT NOT NULL,
  contact_value TEXT,
  status TEXT NOT NULL,
  sent_at DATETIME,
  delivered_at DATETIME,
  error_message TEXT,
  response_data TEXT,
  created_at DATETIME,
  UNIQUE (distribution_id, media_outlet_id)
)`,
}

// Open returns a fresh database private to the calling test. The pool is
// capped at one connection so concurrent writers serialise instead of
// tripping SQLite table locks.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}
