package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeJSON = "application/json"
)

// ContextUserKey gin.Context 中保存登录用户 Claims 的键
const ContextUserKey = "user"
