package messages

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/automoto/orbitfall/shared/netconfig"
)

// Challenge is sent by the server as soon as a connection opens.
type Challenge struct {
	Nonce []byte
}

// JoinRequest answers a Challenge. Proof must equal ComputeProof(key, ProtocolID, Nonce).
type JoinRequest struct {
	ProtocolID uint64
	Proof      []byte
	PlayerName string
	Version    string
}

// JoinAccepted is sent by the server when a client's join request is accepted.
type JoinAccepted struct {
	ClientID            netconfig.ClientID
	SessionToken        string
	TickRate            int
	BroadcastIntervalMs int
}

// JoinRejected is sent by the server when a client's join request is rejected.
type JoinRejected struct {
	Reason string
}

// ComputeProof returns HMAC-SHA256(key, protocolID || nonce).
func ComputeProof(key []byte, protocolID uint64, nonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	var pid [8]byte
	binary.BigEndian.PutUint64(pid[:], protocolID)
	mac.Write(pid[:])
	mac.Write(nonce)
	return mac.Sum(nil)
}

// VerifyProof reports whether proof was produced with the same key, protocol id and nonce.
func VerifyProof(key []byte, protocolID uint64, nonce, proof []byte) bool {
	return hmac.Equal(ComputeProof(key, protocolID, nonce), proof)
}
