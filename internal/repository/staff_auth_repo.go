package repository

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

type StaffAccount struct {
	ID           int
	Email        string
	PasswordHash string
}

type StaffAuthRepository interface {
	GetByEmail(email string) (*StaffAccount, error)
	CreateAccount(email, password string) error
}

type staffAuthRepository struct {
	db *sql.DB
}

func NewStaffAuthRepository(database *sql.DB) StaffAuthRepository {
	return &staffAuthRepository{db: database}
}

func (r *staffAuthRepository) GetByEmail(email string) (*StaffAccount, error) {
	var account StaffAccount
	err := r.db.QueryRow(`SELECT id, email, password_hash FROM staff_accounts WHERE email = $1`, email).
		Scan(&account.ID, &account.Email, &account.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *staffAuthRepository) CreateAccount(email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`INSERT INTO staff_accounts (email, password_hash) VALUES ($1, $2)`,
		email, hashedPassword)
	return err
}
