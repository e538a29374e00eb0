package seeder

import "github.com/ilkoid/pagination-seeder/pkg/api"

// DefaultUsers — фиксированный набор тестовых пользователей.
var DefaultUsers = []api.UserRequest{
	{Name: "Juan Pérez", Email: "juan.perez@email.com", Password: "password123"},
	{Name: "María García", Email: "maria.garcia@email.com", Password: "password123"},
	{Name: "Carlos López", Email: "carlos.lopez@email.com", Password: "password123"},
	{Name: "Ana Martínez", Email: "ana.martinez@email.com", Password: "password123"},
	{Name: "Roberto Díaz", Email: "roberto.diaz@email.com", Password: "password123"},
}

// DefaultCategories — фиксированный набор категорий.
var DefaultCategories = []api.CategoryRequest{
	{Name: "Electrónica", Description: "Dispositivos electrónicos y componentes"},
	{Name: "Gaming", Description: "Productos para videojuegos y gaming"},
	{Name: "Accesorios", Description: "Accesorios y periféricos para computadoras"},
}
