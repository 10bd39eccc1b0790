package sheet

import "burnline/internal/domain"

// TemplateMIME is the content type the templates are served with.
const TemplateMIME = "text/csv; charset=utf-8"

const counterTemplate = `Data,Tipo,Completados,Adicionados,Descrição
2024-01-01,inicial,0,50,Backlog inicial
2024-01-15,completado,5,0,Sprint 1 - Funcionalidades básicas
2024-02-01,completado,8,0,Sprint 2 - Interface usuário
2024-02-15,adicionado,0,10,Novas funcionalidades solicitadas
2024-03-01,completado,12,0,Sprint 3 - Integração API
`

const activityTemplate = `Data,Atividade,Descrição,Fase,Responsável,Status,Início,Fim,Duração
2024-01-10,Planejamento,Kickoff do projeto,1,Ana,Concluído,09:00,12:00,0
2024-01-12,Desenvolvimento,Modelo de dados,1,Bruno,Concluído,08:30,13:30,0
2024-02-05,Desenvolvimento,API de importação,2,Ana,Em andamento,14:00,18:00,0
2024-02-20,Testes,Cenários de regressão,2,Carla,Pendente,,,6
2024-03-02,Entrega,Revisão final,3,Bruno,Pendente,,,0
`

// Template returns the canonical worksheet for a schema.
func Template(schema domain.Schema) string {
	if schema == domain.SchemaActivity {
		return activityTemplate
	}
	return counterTemplate
}

// TemplateFilename returns the download name for a schema's template.
func TemplateFilename(schema domain.Schema) string {
	if schema == domain.SchemaActivity {
		return "template_controle_projetos_atividades.csv"
	}
	return "template_controle_projetos.csv"
}
