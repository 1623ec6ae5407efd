package service

import (
	"github.com/shopspring/decimal"

	"github.com/certdesk/course-storefront/internal/domain"
)

// SeedCatalog is the catalog served until an admin saves the first edit.
func SeedCatalog() []domain.Course {
	return []domain.Course{
		{
			ID:          "course-1",
			Title:       "AWS Certified Solutions Architect - Associate",
			Description: "Design resilient, cost-optimized architectures on AWS.",
			Price:       decimal.NewFromInt(199),
			Currency:    "USD",
			Duration:    "40 hours",
			Instructor:  "Priya Raman",
			Level:       domain.CourseLevelIntermediate,
			Category:    "Cloud",
			Image:       "/images/courses/aws-saa.jpg",
			Details:     "Covers compute, storage, networking, security and well-architected reviews.",
		},
		{
			ID:          "course-2",
			Title:       "Certified Kubernetes Administrator",
			Description: "Install, configure and operate production Kubernetes clusters.",
			Price:       decimal.NewFromInt(249),
			Currency:    "USD",
			Duration:    "36 hours",
			Instructor:  "Tomasz Nowak",
			Level:       domain.CourseLevelAdvanced,
			Category:    "DevOps",
			Image:       "/images/courses/cka.jpg",
		},
		{
			ID:          "course-3",
			Title:       "CompTIA Security+",
			Description: "Core security concepts, threats, and incident response.",
			Price:       decimal.NewFromInt(179),
			Currency:    "USD",
			Duration:    "30 hours",
			Instructor:  "Maya Okafor",
			Level:       domain.CourseLevelBeginner,
			Category:    "Security",
			Image:       "/images/courses/security-plus.jpg",
		},
		{
			ID:          "course-4",
			Title:       "PMP Exam Preparation",
			Description: "Predictive, agile and hybrid project management for the PMP exam.",
			Price:       decimal.NewFromInt(299),
			Currency:    "USD",
			Duration:    "35 hours",
			Instructor:  "Daniel Brooks",
			Level:       domain.CourseLevelIntermediate,
			Category:    "Project Management",
			Image:       "/images/courses/pmp.jpg",
		},
		{
			ID:          "course-5",
			Title:       "Microsoft Azure Fundamentals (AZ-900)",
			Description: "Cloud concepts and core Azure services for newcomers.",
			Price:       decimal.NewFromInt(99),
			Currency:    "USD",
			Duration:    "12 hours",
			Instructor:  "Lena Fischer",
			Level:       domain.CourseLevelBeginner,
			Category:    "Cloud",
			Image:       "/images/courses/az-900.jpg",
		},
	}
}
