package db

import "database/sql"

// EnsureSchema creates the tables the application needs when they do not
// exist yet. The unique keys declared here are load-bearing: the reservation
// engine retries on duplicate reference/import_hash instead of trusting its
// application-level existence check alone.
func EnsureSchema(database *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := database.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(50) NOT NULL DEFAULT 'agent',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS clients (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	nom VARCHAR(100) NOT NULL,
	prenom VARCHAR(100) NULL,
	email VARCHAR(255) NULL,
	telephone VARCHAR(30) NULL,
	adresse VARCHAR(255) NULL,
	pays VARCHAR(60) NULL,
	notes TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP NULL,
	UNIQUE KEY uniq_clients_email (email),
	KEY idx_clients_nom (nom, prenom)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS produits (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	nom VARCHAR(255) NOT NULL,
	type ENUM('billet_avion','hotel','voiture','evenement') NOT NULL,
	description TEXT NULL,
	prix_base DECIMAL(12,2) NOT NULL DEFAULT 0,
	actif TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_produits_type (type)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS forfaits (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	nom VARCHAR(255) NOT NULL,
	description TEXT NULL,
	event_id BIGINT NOT NULL,
	type ENUM('solo','couple','famille') NOT NULL,
	prix DECIMAL(10,2) NULL,
	prix_adulte DECIMAL(10,2) NULL,
	prix_enfant DECIMAL(10,2) NULL,
	nombre_max_personnes INT NOT NULL DEFAULT 1,
	actif TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_forfaits_event (event_id),
	CONSTRAINT fk_forfaits_event FOREIGN KEY (event_id) REFERENCES produits(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS reservations (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	client_id BIGINT NOT NULL,
	passenger_id BIGINT NULL,
	produit_id BIGINT NULL,
	forfait_id BIGINT NULL,
	type ENUM('billet_avion','hotel','voiture','evenement','forfait','assurance') NOT NULL,
	reference VARCHAR(100) NOT NULL,
	import_hash VARCHAR(64) NULL,
	import_source VARCHAR(120) NULL,
	statut ENUM('en_attente','confirmee','annulee') NOT NULL DEFAULT 'en_attente',
	nombre_personnes INT UNSIGNED NOT NULL DEFAULT 1,
	montant_sous_total DECIMAL(12,2) NOT NULL DEFAULT 0,
	montant_taxes DECIMAL(12,2) NOT NULL DEFAULT 0,
	montant_total DECIMAL(12,2) NOT NULL DEFAULT 0,
	notes TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP NULL,
	UNIQUE KEY uniq_reservations_reference (reference),
	UNIQUE KEY uniq_reservations_import_hash (import_hash),
	KEY idx_reservations_client (client_id),
	KEY idx_reservations_type_statut (type, statut),
	CONSTRAINT fk_reservations_client FOREIGN KEY (client_id) REFERENCES clients(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS participants (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reservation_id BIGINT NOT NULL,
	role ENUM('passenger','beneficiary','participant') NOT NULL DEFAULT 'participant',
	nom VARCHAR(100) NOT NULL,
	prenom VARCHAR(100) NULL,
	age INT NULL,
	sexe VARCHAR(10) NULL,
	passeport VARCHAR(60) NULL,
	remarques TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP NULL,
	KEY idx_participants_reservation (reservation_id),
	CONSTRAINT fk_participants_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS reservation_flight_details (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reservation_id BIGINT NOT NULL,
	ville_depart VARCHAR(100) NULL,
	ville_arrivee VARCHAR(100) NULL,
	date_depart DATE NULL,
	date_arrivee DATE NULL,
	compagnie VARCHAR(100) NULL,
	pnr VARCHAR(50) NULL,
	classe VARCHAR(50) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_flight_reservation (reservation_id),
	CONSTRAINT fk_flight_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS reservation_assurances (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reservation_id BIGINT NOT NULL,
	libelle VARCHAR(255) NOT NULL,
	date_debut DATE NOT NULL,
	date_fin DATE NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_assurance_reservation (reservation_id),
	CONSTRAINT fk_assurance_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS factures (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	reservation_id BIGINT NOT NULL,
	numero VARCHAR(100) NOT NULL,
	date_facture DATE NOT NULL,
	montant_sous_total DECIMAL(12,2) NOT NULL DEFAULT 0,
	montant_taxes DECIMAL(12,2) NOT NULL DEFAULT 0,
	montant_total DECIMAL(12,2) NOT NULL DEFAULT 0,
	statut ENUM('brouillon','emis','paye_partiellement','paye_totalement','annule') NOT NULL DEFAULT 'brouillon',
	pdf_path VARCHAR(255) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_factures_numero (numero),
	KEY idx_factures_reservation (reservation_id),
	CONSTRAINT fk_factures_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS paiements (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	facture_id BIGINT NOT NULL,
	montant DECIMAL(12,2) NOT NULL,
	mode_paiement VARCHAR(50) NOT NULL,
	reference VARCHAR(100) NULL,
	date_paiement DATE NOT NULL,
	statut ENUM('recu','en_attente','echoue') NOT NULL DEFAULT 'recu',
	notes TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_paiements_facture (facture_id),
	CONSTRAINT fk_paiements_facture FOREIGN KEY (facture_id) REFERENCES factures(id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS fournisseurs (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	nom VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	telephone VARCHAR(50) NULL,
	site_web VARCHAR(255) NULL,
	description TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_fournisseurs_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS depenses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	date_depense DATE NOT NULL,
	categorie VARCHAR(100) NOT NULL,
	libelle VARCHAR(255) NOT NULL,
	fournisseur_nom VARCHAR(255) NULL,
	reference VARCHAR(100) NULL,
	montant DECIMAL(12,2) NOT NULL,
	mode_paiement VARCHAR(50) NULL,
	statut ENUM('paye','en_attente') NOT NULL DEFAULT 'paye',
	reservation_id BIGINT NULL,
	notes TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_depenses_date (date_depense),
	KEY idx_depenses_reservation (reservation_id),
	CONSTRAINT fk_depenses_reservation FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
}
