package models

import "strings"

// Category is a SuperBid marketplace category slug. The same slug names the
// base table that holds the listings of that category.
type Category string

const (
	CategoryAlimentosBebidas         Category = "alimentos-e-bebidas"
	CategoryAnimais                  Category = "animais"
	CategoryArtesDecoracao           Category = "artes-decoracao-colecionismo"
	CategoryBolsasJoiasRelogios      Category = "bolsas-canetas-joias-e-relogios"
	CategoryCaminhoesOnibus          Category = "caminhoes-onibus"
	CategoryCarrosMotos              Category = "carros-motos"
	CategoryCozinhasRestaurantes     Category = "cozinhas-e-restaurantes"
	CategoryEletrodomesticos         Category = "eletrodomesticos"
	CategoryEmbarcacoesAeronaves     Category = "embarcacoes-aeronaves"
	CategoryImoveis                  Category = "imoveis"
	CategoryIndustrialMaquinas       Category = "industrial-maquinas-equipamentos"
	CategoryMaquinasPesadasAgricolas Category = "maquinas-pesadas-agricolas"
	CategoryMateriaisConstrucao      Category = "materiais-para-construcao-civil"
	CategoryMoveisDecoracao          Category = "moveis-e-decoracao"
	CategoryMovimentacaoTransporte   Category = "movimentacao-transporte"
	CategoryOportunidades            Category = "oportunidades"
	CategorySucatasMateriaisResiduos Category = "sucatas-materiais-residuos"
	CategoryTecnologia               Category = "tecnologia"
)

// AllCategories lists every monitored category in fetch order.
var AllCategories = []Category{
	CategoryAlimentosBebidas,
	CategoryAnimais,
	CategoryArtesDecoracao,
	CategoryBolsasJoiasRelogios,
	CategoryCaminhoesOnibus,
	CategoryCarrosMotos,
	CategoryCozinhasRestaurantes,
	CategoryEletrodomesticos,
	CategoryEmbarcacoesAeronaves,
	CategoryImoveis,
	CategoryIndustrialMaquinas,
	CategoryMaquinasPesadasAgricolas,
	CategoryMateriaisConstrucao,
	CategoryMoveisDecoracao,
	CategoryMovimentacaoTransporte,
	CategoryOportunidades,
	CategorySucatasMateriaisResiduos,
	CategoryTecnologia,
}

// ParseCategory maps a slug onto the allow-list. Matching is exact after
// trimming; unknown slugs are rejected.
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range AllCategories {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

func CategorySlugs() []string {
	out := make([]string, 0, len(AllCategories))
	for _, c := range AllCategories {
		out = append(out, string(c))
	}
	return out
}

func (c Category) String() string {
	return string(c)
}
