package config

// File extension conventions used by the CLI surface (spec §6). These
// are conventions only — file contents are fully self-describing, so a
// node or miner never refuses a file for having the "wrong" extension.
const (
	PublicKeyExt  = ".pub.pem"
	PrivateKeyExt = ".priv.cbor"
	ChainExt      = ".cbor"
)
