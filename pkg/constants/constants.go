package constants

//============== UPLOAD CONTEXTS ==============

// UploadContext - подкаталог хранилища для загруженных файлов.
type UploadContext string

const (
	// UploadContextEmployeeImport - исходные xlsx импорта сотрудников.
	UploadContextEmployeeImport UploadContext = "imports"
)

func (uc UploadContext) String() string {
	return string(uc)
}

//============== CACHE KEYS ==============

const (
	// Формат: lockout:<email> -> "1", TTL = длительность блокировки.
	CacheKeyLockout = "lockout:%s"

	// Формат: login_attempts:<email> -> счётчик неудачных попыток.
	CacheKeyLoginAttempts = "login_attempts:%s"

	// Счётчик поколений кеша дашборда, без TTL. Ключи значений содержат номер поколения.
	CacheKeyDashboardGeneration = "dashboard:generation"
	CacheKeyDashboardCompanies  = "dashboard:companies:%d"
	CacheKeyDashboardOverview   = "dashboard:overview:%d"
)
