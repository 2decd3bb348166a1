// Package repository define las entidades y los contratos de persistencia.
//
// Las interfaces son independientes del almacenamiento; las implementaciones
// viven en internal/store/pg (PostgreSQL) e internal/store/memory.
//
//	┌──────────────────────────────────────┐
//	│        Services / Controllers        │
//	└──────────────────────────────────────┘
//	                   │
//	                   ▼
//	┌──────────────────────────────────────┐
//	│  domain/repository (interfaces)      │
//	│  UserRepository, AudioRepository     │
//	└──────────────────────────────────────┘
//	            │              │
//	            ▼              ▼
//	     ┌────────────┐  ┌────────────┐
//	     │  store/pg  │  │store/memory│
//	     └────────────┘  └────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - El usuario se correlaciona por YandexID (único); username y email no son claves
//   - Errores de dominio están en errors.go
package repository
