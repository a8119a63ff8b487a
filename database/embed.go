// Package database embed dosyası — migration SQL dosyalarını binary'ye gömer.
// Deploy edilen binary migration dosyalarına ayrıca ihtiyaç duymaz.
package database

import (
	"embed"
	"io/fs"
)

// EmbeddedMigrations, migrations/ dizinindeki SQL dosyalarını içerir.
// embed root'u modül dizinidir; SQL dosyaları migrations/ alt dizininde
// durur — New'a doğrudan verilmez, Migrations() ile sub'lanır.
//
//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS

// Migrations, embed root'unu migrations/ alt dizinine indirger.
// New'a geçirilecek fs.FS budur; kök dizin geçilirse ReadDir(".") yalnızca
// migrations/ klasörünü görür ve hiçbir SQL dosyası çalışmaz.
func Migrations() fs.FS {
	sub, err := fs.Sub(EmbeddedMigrations, "migrations")
	if err != nil {
		// embed derleme zamanında sabittir; buraya düşmek programlama hatasıdır
		panic("database: embedded migrations subtree missing: " + err.Error())
	}
	return sub
}
