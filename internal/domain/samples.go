package domain

// SampleProject is a preconfigured demo project offered by the generation form.
type SampleProject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

// SectionNames lists the requirements-document sections the service drafts.
var SectionNames = []string{
	"Основания для разработки",
	"Назначение системы",
	"Требования к системе",
}

// SampleProjects are the demo projects shown on the generation form. When a
// request names one of them and carries no description of its own, the sample
// description is substituted.
var SampleProjects = []SampleProject{
	{
		ID:     "hr_muiv",
		Name:   "Система учета сотрудников",
		Domain: "учет кадров в вузе",
		Description: "Разработка информационной системы учета сотрудников " +
			"частного образовательного учреждения высшего образования " +
			"«Московский университет имени С. Ю. Витте». " +
			"Система должна хранить сведения о штатном и совместительском " +
			"персонале, поддерживать поиск по должности и подразделению, " +
			"формировать отчеты для кадровой службы и руководства.",
	},
	{
		ID:     "vkr_support",
		Name:   "Система поддержки ВКР",
		Domain: "образовательные процессы в вузе",
		Description: "Создание информационной системы поддержки подготовки и хранения " +
			"выпускных квалификационных работ студентов. Система позволяет " +
			"регистрировать темы ВКР, закреплять научных руководителей, " +
			"загружать промежуточные и итоговые версии работ, а также " +
			"обеспечивать доступ к архиву ВКР с учетом ролей пользователей.",
	},
	{
		ID:     "edo_department",
		Name:   "Подсистема электронного документооборота кафедры",
		Domain: "электронный документооборот",
		Description: "Разработка подсистемы электронного документооборота (ЭДО) " +
			"для кафедры в составе корпоративной информационной системы вуза. " +
			"Подсистема обеспечивает регистрацию, согласование и хранение " +
			"служебных записок, приказов, заявлений и других документов, " +
			"поддерживает контроль сроков исполнения и разграничение прав доступа.",
	},
}

// SampleProjectByID returns the sample project with the given id, or nil.
func SampleProjectByID(id string) *SampleProject {
	for i := range SampleProjects {
		if SampleProjects[i].ID == id {
			return &SampleProjects[i]
		}
	}
	return nil
}
