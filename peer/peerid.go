// Package peer, client tarafındaki arama yöneticisini içerir.
//
// Sunucu sinyal taşır ama medya oturumunu client kurar: medya kaynağını
// açmak, karşı tarafın peer bağlantısını beklemek/cevaplamak ve kapanışta
// her koşulda kaynakları bırakmak bu paketin işidir. Masaüstü client ve
// testler bu paketi kullanır; sunucu binary'si kullanmaz.
package peer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewPeerID, oturumluk peer kimliği üretir: userID + zaman damgası +
// rastgele ek. Kalıcı userID'den türediği için karşı taraf sahibini
// tanıyabilir; zaman + rastgelelik aynı kullanıcının eski oturumlarıyla
// çakışmayı önler.
func NewPeerID(userID string) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand hatası pratikte görülmez; timestamp tek başına yeter
		return fmt.Sprintf("%s-%d", userID, time.Now().UnixMilli())
	}
	return fmt.Sprintf("%s-%d-%s", userID, time.Now().UnixMilli(), hex.EncodeToString(suffix))
}
