// Package archive reads and writes layout databases in their two on-disk
// formats.
//
// # Formats
//
// [FormatBIN] is the compact form: a five byte header ("ECDB" and a version
// byte) followed by a zstd stream holding the BSON encoding of a
// [Document]. [FormatXML] is the human-readable form:
//
//	<database version="1" name="chip">
//	  <units unit="1e-06" precision="1e-09"></units>
//	  <cells>
//	    <cell name="top" type="circuit">
//	      <layout name="top">
//	        <stackup>
//	          <layer name="M1" type="conducting" elevation="0" thickness="0.01" ...></layer>
//	        </stackup>
//	        ...
//
// Both formats carry the same [Document], so a database written in one and
// read back from the other is equal in content. Entity identities are not
// stored; references between entities are by name (cells, layer maps,
// padstack definitions) or by position (layers, nets).
//
// The package knows nothing about the in-memory database; pkg/ecad converts
// between its entities and a Document.
package archive
