// Package migration holds the SQLite schema for the local listening archive.
package migration

// Create builds the full schema on a fresh database.
const Create = `
CREATE TABLE User (
  name TEXT PRIMARY KEY,
  access_token TEXT DEFAULT '',
  refresh_token TEXT DEFAULT '',
  token_expiry DATETIME,
  last_updated DATETIME
);

CREATE TABLE Artist (
  name TEXT PRIMARY KEY
);

CREATE TABLE Album (
  artist TEXT,
  name TEXT,
  PRIMARY KEY (artist, name),
  FOREIGN KEY (artist) REFERENCES Artist(name)
);

CREATE TABLE Track (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  spotify_id TEXT DEFAULT '',
  artist TEXT,
  album TEXT,
  name TEXT,
  popularity INTEGER DEFAULT 0,
  FOREIGN KEY (artist) REFERENCES Artist(name)
);

CREATE TABLE Listen (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT,
  track INTEGER,
  date INTEGER,
  UNIQUE (user, track, date),
  FOREIGN KEY (user) REFERENCES User(name),
  FOREIGN KEY (track) REFERENCES Track(id)
);

CREATE TABLE ReportCache (
  user TEXT,
  route TEXT,
  body TEXT,
  created DATETIME,
  PRIMARY KEY (user, route)
);
`
