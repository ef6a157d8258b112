package backup

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmpim/tenebra-wallet/internal/crypto"
	"github.com/tmpim/tenebra-wallet/internal/event"
	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/internal/store"
)

var testParams = crypto.Params{N: 1 << 12, R: 8, P: 1, KeyLen: 32}

type fixture struct {
	session  *crypto.Session
	wallets  *store.WalletStore
	contacts *store.ContactStore
}

func newFixture(t *testing.T, password string) *fixture {
	t.Helper()
	bus := event.New()
	dir := t.TempDir()

	session := crypto.NewSession(testParams, nil)
	_, err := session.Initialize(password)
	require.NoError(t, err)

	wallets, err := store.OpenWalletStore(dir, bus)
	require.NoError(t, err)
	contacts, err := store.OpenContactStore(dir, bus)
	require.NoError(t, err)

	return &fixture{session: session, wallets: wallets, contacts: contacts}
}

func (f *fixture) addWallet(t *testing.T, address, privatekey string, dontSave bool) *model.Wallet {
	t.Helper()
	key, err := f.session.Key()
	require.NoError(t, err)
	encSecret, nonce, err := crypto.EncryptSecret(key, privatekey)
	require.NoError(t, err)

	w := &model.Wallet{
		Address:   address,
		EncSecret: encSecret,
		Nonce:     nonce,
		Format:    model.FormatTenebraWallet,
		DontSave:  dontSave,
	}
	require.NoError(t, f.wallets.Add(w))
	return w
}

func TestExportShape(t *testing.T) {
	f := newFixture(t, "hunter2")
	f.addWallet(t, "t52xkdsr5l", "pk-one", false)
	f.addWallet(t, "tzwow91ylm", "pk-two", true) // dontSave: excluded
	require.NoError(t, f.contacts.Add(&model.Contact{Address: "tp4qa06xt8", Label: "Bob"}))

	code, err := Export(f.session, f.wallets, f.contacts)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(code)
	require.NoError(t, err)

	var b Backup
	require.NoError(t, json.Unmarshal(raw, &b))
	assert.Equal(t, 2, b.Version)
	assert.Equal(t, f.session.Record().Salt, b.Salt)
	assert.Equal(t, f.session.Record().Tester, b.Tester)
	assert.Len(t, b.Wallets, 1, "dontSave wallets are excluded")
	assert.Len(t, b.Contacts, 1)
	for _, w := range b.Wallets {
		assert.Equal(t, "t52xkdsr5l", w.Address)
		assert.NotContains(t, w.EncSecret, "pk-one", "secrets stay encrypted")
	}
}

func TestExportWithoutVault(t *testing.T) {
	bus := event.New()
	dir := t.TempDir()
	wallets, err := store.OpenWalletStore(dir, bus)
	require.NoError(t, err)
	contacts, err := store.OpenContactStore(dir, bus)
	require.NoError(t, err)

	_, err = Export(crypto.NewSession(testParams, nil), wallets, contacts)
	assert.ErrorIs(t, err, crypto.ErrNoVault)
}

func TestImportRoundTrip(t *testing.T) {
	src := newFixture(t, "old-password")
	src.addWallet(t, "t52xkdsr5l", "pk-one", false)
	require.NoError(t, src.contacts.Add(&model.Contact{Address: "tp4qa06xt8", Label: "Bob"}))

	code, err := Export(src.session, src.wallets, src.contacts)
	require.NoError(t, err)

	// Import into a fresh install that uses a different master password.
	dst := newFixture(t, "new-password")
	result, err := Import(code, "old-password", dst.session, dst.wallets, dst.contacts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Wallets)
	assert.Equal(t, 1, result.Contacts)
	assert.Zero(t, result.Skipped)

	// The imported secret must decrypt under the new session's key.
	imported, err := dst.wallets.GetByAddress("t52xkdsr5l")
	require.NoError(t, err)
	key, err := dst.session.Key()
	require.NoError(t, err)
	pk, err := crypto.DecryptSecret(key, imported.EncSecret, imported.Nonce)
	require.NoError(t, err)
	assert.Equal(t, "pk-one", pk)
}

func TestImportWrongPassword(t *testing.T) {
	src := newFixture(t, "old-password")
	src.addWallet(t, "t52xkdsr5l", "pk-one", false)
	code, err := Export(src.session, src.wallets, src.contacts)
	require.NoError(t, err)

	dst := newFixture(t, "new-password")
	_, err = Import(code, "new-password", dst.session, dst.wallets, dst.contacts)
	assert.ErrorIs(t, err, crypto.ErrAuthFailed)
	assert.Empty(t, dst.wallets.List(), "nothing imported on auth failure")
}

func TestImportSkipsDuplicates(t *testing.T) {
	src := newFixture(t, "pw")
	src.addWallet(t, "t52xkdsr5l", "pk-one", false)
	code, err := Export(src.session, src.wallets, src.contacts)
	require.NoError(t, err)

	// Importing into the same fixture: the address already exists.
	result, err := Import(code, "pw", src.session, src.wallets, src.contacts)
	require.NoError(t, err)
	assert.Zero(t, result.Wallets)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, src.wallets.List(), 1)
}

func TestImportNullEntries(t *testing.T) {
	// Backup codes come in over the API; JSON null wallet or contact
	// entries must be skipped, not dereferenced.
	src := newFixture(t, "pw")
	src.addWallet(t, "t52xkdsr5l", "pk-one", false)
	code, err := Export(src.session, src.wallets, src.contacts)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(code)
	require.NoError(t, err)
	var b Backup
	require.NoError(t, json.Unmarshal(raw, &b))
	b.Wallets["null-wallet"] = nil
	b.Contacts = model.ContactMap{"null-contact": nil}
	mangled, err := json.Marshal(b)
	require.NoError(t, err)

	dst := newFixture(t, "pw2")
	result, err := Import(base64.StdEncoding.EncodeToString(mangled), "pw", dst.session, dst.wallets, dst.contacts)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Wallets, "real wallet still imported")
	assert.Zero(t, result.Contacts)
	assert.Equal(t, 2, result.Skipped)
}

func TestImportGarbage(t *testing.T) {
	dst := newFixture(t, "pw")

	_, err := Import("not base64 at all!!!", "pw", dst.session, dst.wallets, dst.contacts)
	assert.Error(t, err)

	badVersion, _ := json.Marshal(Backup{Version: 99})
	_, err = Import(base64.StdEncoding.EncodeToString(badVersion), "pw", dst.session, dst.wallets, dst.contacts)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
