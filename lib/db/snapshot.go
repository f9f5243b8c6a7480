package db

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// --------------------------------------------------------------------------
// Snapshot Format
// --------------------------------------------------------------------------

// Constants for the snapshot file format
const (
	magicNum        = "KVBSNAP\x00" // File format identifier
	snapshotVersion = 1             // Format version
	endOfDatabase   = ^uint32(0)    // Marks the end of the keys of one database
)

// Dump writes all databases of database to w. Engines use it to implement KVDB.Save.
//
// Layout (little endian): magic, version (1 byte), write index (8 bytes),
// number of databases (8 bytes), then per database its keys as
// (key length, key, entry length, encoded entry) terminated by endOfDatabase.
func Dump(w io.Writer, database KVDB) error {
	// Use a buffered writer for better performance
	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(snapshotVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, database.WriteIdx()); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, database.NumDatabases()); err != nil {
		return err
	}

	for dbIdx := uint64(0); dbIdx < database.NumDatabases(); dbIdx++ {
		keys, err := database.Keys(dbIdx)
		if err != nil {
			return err
		}
		for _, key := range keys {
			entry, ok, err := database.Get(dbIdx, key)
			if err != nil {
				return err
			}
			// key was deleted concurrently
			if !ok {
				continue
			}
			if err := writeChunk(bw, []byte(key)); err != nil {
				return err
			}
			if err := writeChunk(bw, entry.Encode()); err != nil {
				return err
			}
		}
		if err := binary.Write(bw, binary.LittleEndian, endOfDatabase); err != nil {
			return err
		}
	}

	// Flush buffer to ensure all data is written
	return bw.Flush()
}

// Restore replaces the content of database with a snapshot written by Dump.
// Engines use it to implement KVDB.Load.
func Restore(r io.Reader, database KVDB) error {
	// Use a buffered reader for better performance
	br := bufio.NewReaderSize(r, 1024*1024) // 1 MB buffer

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", version)
	}

	var writeIdx, numDatabases uint64
	if err := binary.Read(br, binary.LittleEndian, &writeIdx); err != nil {
		return err
	}
	if err := binary.Read(br, binary.LittleEndian, &numDatabases); err != nil {
		return err
	}
	if numDatabases > database.NumDatabases() {
		return fmt.Errorf("snapshot has %d databases, target only %d", numDatabases, database.NumDatabases())
	}

	for dbIdx := uint64(0); dbIdx < database.NumDatabases(); dbIdx++ {
		if err := database.Flush(dbIdx); err != nil {
			return err
		}
	}

	for dbIdx := uint64(0); dbIdx < numDatabases; dbIdx++ {
		for {
			key, done, err := readChunk(br)
			if err != nil {
				return err
			}
			if done {
				break
			}
			data, done, err := readChunk(br)
			if err != nil {
				return err
			}
			if done {
				return fmt.Errorf("missing entry for key %q", key)
			}
			entry, err := DecodeEntry(data)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			if err := database.Put(dbIdx, string(key), entry); err != nil {
				return err
			}
		}
	}

	database.SetWriteIdx(writeIdx)
	return nil
}

func writeChunk(w io.Writer, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// readChunk reads a length prefixed chunk. done is true if the end of database marker was read.
func readChunk(r io.Reader) (data []byte, done bool, err error) {
	var l uint32
	if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
		return nil, false, err
	}
	if l == endOfDatabase {
		return nil, true, nil
	}
	data = make([]byte, l)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, false, err
	}
	return data, false, nil
}
