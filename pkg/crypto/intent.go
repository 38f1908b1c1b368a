package crypto

import "github.com/Klingon-tech/klingnet-wallet/pkg/types"

// IntentScope names the kind of message being signed.
type IntentScope uint8

// Intent scopes.
const (
	ScopeTransactionData    IntentScope = 0
	ScopeTransactionEffects IntentScope = 1
	ScopeCheckpointSummary  IntentScope = 2
	ScopePersonalMessage    IntentScope = 3
)

// IntentVersion is the intent format version.
type IntentVersion uint8

// IntentVersionV0 is the only version in use.
const IntentVersionV0 IntentVersion = 0

// AppID names the application domain of an intent.
type AppID uint8

// AppIota is the application id of the Move-object ledger.
const AppIota AppID = 0

// Intent is the three-byte domain separator prepended to every signed
// message.
type Intent struct {
	Scope   IntentScope
	Version IntentVersion
	AppID   AppID
}

// IotaTransaction is the intent for signing transaction data.
func IotaTransaction() Intent {
	return Intent{Scope: ScopeTransactionData, Version: IntentVersionV0, AppID: AppIota}
}

// PersonalMessage is the intent for signing arbitrary user messages.
func PersonalMessage() Intent {
	return Intent{Scope: ScopePersonalMessage, Version: IntentVersionV0, AppID: AppIota}
}

// Bytes returns scope || version || app id.
func (i Intent) Bytes() []byte {
	return []byte{byte(i.Scope), byte(i.Version), byte(i.AppID)}
}

// MessageDigest hashes the intent message for payload, which must already
// be in its canonical encoding.
func (i Intent) MessageDigest(payload []byte) types.Digest {
	return Hash(i.Bytes(), payload)
}

// SignIntent signs payload under intent.
func SignIntent(signer Signer, intent Intent, payload []byte) (*Signature, error) {
	digest := intent.MessageDigest(payload)
	return signer.Sign(digest[:])
}

// VerifyIntent checks sig against payload under intent.
func VerifyIntent(sig *Signature, intent Intent, payload []byte) error {
	digest := intent.MessageDigest(payload)
	return sig.Verify(digest[:])
}
