// Package main — Repository katmanı başlatma.
package main

import (
	"database/sql"

	"github.com/logit-app/rtc/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
// Tek struct, fonksiyon imzalarını temiz tutar ve yeni repository
// eklendiğinde sadece iki yer güncellenir.
type Repositories struct {
	User         repository.UserRepository
	Chat         repository.ChatRepository
	Call         repository.CallRepository
	Notification repository.NotificationRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
// Aynı *sql.DB paylaşılır — Go'nun sql.DB'si thread-safe connection pool'dur.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:         repository.NewSQLiteUserRepo(conn),
		Chat:         repository.NewSQLiteChatRepo(conn),
		Call:         repository.NewSQLiteCallRepo(conn),
		Notification: repository.NewSQLiteNotificationRepo(conn),
	}
}
