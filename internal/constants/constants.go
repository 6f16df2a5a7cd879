package constants

import "time"

const (
	AppName    = "altmask"
	ConfigFile = "config.yaml"
	StoreFile  = "store.json"
	LevelDBDir = "store.ldb"
	SQLiteFile = "store.db"

	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	// Persisted keys.
	StorageNetworkIndex     = "networkIndex"
	StorageAccounts         = "accounts"
	StorageAccountTokenList = "accountTokenList"

	// AAD for the encrypted file store (must match on decrypt).
	StoreAAD = "altmask:store:v1"

	GetBalancesInterval = 60 * time.Second

	DefaultGasLimit = 200000
	DefaultGasPrice = "0.0000004"
	DefaultAmount   = "0"
)
