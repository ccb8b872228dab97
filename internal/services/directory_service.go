package services

import (
	"strings"

	"github.com/unifiedpay/wallet-backend/internal/models"
	repo "github.com/unifiedpay/wallet-backend/internal/repository"
	"github.com/unifiedpay/wallet-backend/internal/upi"
)

// DirectoryService serves the UI's address-book reads and writes: saved
// contacts and the caller's own UPI accounts.
type DirectoryService struct {
	contacts repo.Contacts
	accounts repo.UPIAccounts
}

func NewDirectoryService(c repo.Contacts, a repo.UPIAccounts) *DirectoryService {
	return &DirectoryService{contacts: c, accounts: a}
}

func (s *DirectoryService) Contacts(ownerUserID string) ([]models.Contact, error) {
	return s.contacts.ListByOwner(ownerUserID)
}

func (s *DirectoryService) SaveContact(ownerUserID, name, upiID, phone string) (models.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" || !upi.ValidAddress(upiID) {
		return models.Contact{}, ErrInvalidRequest
	}
	c := models.Contact{OwnerUserID: ownerUserID, Name: name, UPIID: upiID}
	if p := strings.TrimSpace(phone); p != "" {
		c.Phone = &p
	}
	return s.contacts.Upsert(c)
}

func (s *DirectoryService) RemoveContact(ownerUserID, id string) error {
	return s.contacts.Delete(ownerUserID, id)
}

func (s *DirectoryService) UPIAccounts(userID string) ([]models.UPIAccount, error) {
	return s.accounts.ListByUser(userID)
}
