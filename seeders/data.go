package seeders

type companySeed struct {
	Name          string
	Industry      string
	Status        string
	FallbackOrder []string
}

type employeeSeed struct {
	Company         string
	FullName        string
	Email           string
	Department      string
	Position        string
	Phone           string
	TelegramHandle  string
	EmailSubscribed bool
}

var companiesData = []companySeed{
	{Name: "Andes Logística", Industry: "Логистика", Status: "active", FallbackOrder: []string{"whatsapp", "email"}},
	{Name: "Pacífico Retail", Industry: "Ритейл", Status: "active", FallbackOrder: []string{"telegram", "whatsapp", "email"}},
	{Name: "Atacama Minería", Industry: "Добыча", Status: "inactive"},
}

var employeesData = []employeeSeed{
	{Company: "Andes Logística", FullName: "Camila Rojas", Email: "camila.rojas@andes.test", Department: "Операции", Position: "Диспетчер", Phone: "+56911112222", EmailSubscribed: true},
	{Company: "Andes Logística", FullName: "Matías González", Email: "matias.gonzalez@andes.test", Department: "Склад", Position: "Кладовщик", Phone: "+56922223333"},
	{Company: "Andes Logística", FullName: "Valentina Soto", Department: "Кадры", Position: "HR-менеджер", TelegramHandle: "vsoto", EmailSubscribed: true},
	{Company: "Pacífico Retail", FullName: "Benjamín Muñoz", Email: "benjamin.munoz@pacifico.test", Department: "Продажи", Position: "Продавец", TelegramHandle: "bmunoz", EmailSubscribed: true},
	{Company: "Pacífico Retail", FullName: "Isidora Díaz", Email: "isidora.diaz@pacifico.test", Department: "Маркетинг", Position: "Аналитик", Phone: "+56933334444"},
	{Company: "Atacama Minería", FullName: "Tomás Pérez", Email: "tomas.perez@atacama.test", Department: "Безопасность", Position: "Инженер", EmailSubscribed: true},
}
