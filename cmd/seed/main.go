package main

import (
	"clausecheck/internal/model"
	"clausecheck/internal/repository"
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("clausecheck")
	catalogRepo := repository.NewCatalogRepo(db)

	clauses := []model.CatalogClause{
		{
			ID:    "std:001",
			Title: "Parties and definitions",
			Items: []model.CatalogItem{
				{ID: "std:001:item:001", Title: "Full legal names of all parties"},
				{ID: "std:001:item:002", Title: "Defined terms used consistently"},
			},
		},
		{
			ID:    "std:002",
			Title: "Scope of services",
			Items: []model.CatalogItem{
				{ID: "std:002:item:001", Title: "Deliverables enumerated"},
				{ID: "std:002:item:002", Title: "Acceptance criteria"},
			},
		},
		{
			ID:    "std:003",
			Title: "Payment terms",
			Items: []model.CatalogItem{
				{ID: "std:003:item:001", Title: "Fees and payment schedule"},
				{ID: "std:003:item:002", Title: "Late payment interest"},
			},
		},
		{
			ID:    "std:004",
			Title: "Term and termination",
			Items: []model.CatalogItem{
				{ID: "std:004:item:001", Title: "Termination for convenience notice period"},
				{ID: "std:004:item:002", Title: "Termination for material breach"},
			},
		},
		{
			ID:    "std:005",
			Title: "Confidentiality",
			Items: []model.CatalogItem{
				{ID: "std:005:item:001", Title: "Definition of confidential information"},
			},
		},
		{
			ID:    "std:006",
			Title: "Data protection",
			Items: []model.CatalogItem{
				{ID: "std:006:item:001", Title: "Processing only on documented instructions"},
				{ID: "std:006:item:002", Title: "Breach notification deadline"},
				{ID: "std:006:item:003", Title: "Sub-processor approval"},
			},
		},
		{
			ID:    "std:007",
			Title: "Intellectual property",
			Items: []model.CatalogItem{
				{ID: "std:007:item:001", Title: "Ownership of work product"},
				{ID: "std:007:item:002", Title: "License back to supplier"},
			},
		},
		{
			ID:    "std:008",
			Title: "Limitation of liability",
			Items: []model.CatalogItem{
				{ID: "std:008:item:001", Title: "Liability cap amount"},
				{ID: "std:008:item:002", Title: "Carve-outs from the cap"},
			},
		},
		{
			ID:    "std:009",
			Title: "Indemnification",
		},
		{
			ID:    "std:010",
			Title: "Governing law and dispute resolution",
			Items: []model.CatalogItem{
				{ID: "std:010:item:001", Title: "Governing law named"},
				{ID: "std:010:item:002", Title: "Forum or arbitration body named"},
			},
		},
	}

	for i := range clauses {
		if err := catalogRepo.Upsert(ctx, &clauses[i]); err != nil {
			log.Fatalf("Failed to seed clause %s: %v", clauses[i].ID, err)
		}
	}
	log.Printf("Seeded %d standard clauses", len(clauses))

	// Demo contract for local development
	contractRepo := repository.NewContractRepo(db)
	now := time.Now()
	demo := &model.Contract{
		ID:   "demo-contract",
		Name: "Demo master services agreement",
		SectionTitles: map[string]string{
			"sec-1": "Commercial terms",
			"sec-2": "Confidentiality and data protection",
			"sec-3": "Liability and disputes",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := contractRepo.GetByID(ctx, demo.ID); err != nil {
		log.Fatalf("Failed to check demo contract: %v", err)
	} else if existing == nil {
		if err := contractRepo.Create(ctx, demo); err != nil {
			log.Fatalf("Failed to seed demo contract: %v", err)
		}
		log.Printf("Seeded demo contract %s", demo.ID)
	}
}
