// Package models, signaling çekirdeğinin domain modellerini tanımlar.
//
// Kullanıcı ve sohbet CRUD'u platformun ana servisine aittir — bu çekirdek
// onları sadece repository interface'leri üzerinden okur (display name
// çözümleme, katılımcı listesi vb.). Buradaki struct'lar o kayıtların
// minimal projeksiyonlarıdır.
package models

import "time"

// User, bir LogIt kullanıcısının signaling çekirdeğinde ihtiyaç duyulan
// minimal projeksiyonu.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName *string   `json:"display_name"` // *string = nullable
	AvatarURL   *string   `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Name, gösterilecek insan-okur ismi döner: display name varsa o, yoksa username.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}
