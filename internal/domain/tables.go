package domain

var Tables = []interface{}{
	// System
	&AdminOperator{},
	&AdminLog{},
	// Catalog
	&Product{},
	&Review{},
	&CategoryImage{},
}
